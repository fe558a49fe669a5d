/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"olap-graph-datagen-go/internal/batch"
	"olap-graph-datagen-go/internal/models"
)

// rewriteDataset re-serializes every file of a dataset into a scratch
// directory and checks that no row is lost or gained.
func rewriteDataset(ctx context.Context, opts Options, dataset models.UseCase, r *Report) error {
	scratch, err := os.MkdirTemp("", "datagen-verify-*")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	root, codec := opts.Root, opts.Codec
	switch dataset {
	case models.UseCaseCustomer360:
		return firstErr(
			func() error { return rewriteTable[models.Customer](ctx, root, scratch, dataset, models.TableCustomers, codec, r) },
			func() error { return rewriteTable[models.Product](ctx, root, scratch, dataset, models.TableProducts, codec, r) },
			func() error {
				return rewriteTable[models.Transaction](ctx, root, scratch, dataset, models.TableTransactions, codec, r)
			},
			func() error {
				return rewriteTable[models.Interaction](ctx, root, scratch, dataset, models.TableInteractions, codec, r)
			},
		)
	case models.UseCaseFraud:
		return firstErr(
			func() error {
				return rewriteTable[models.FraudCustomer](ctx, root, scratch, dataset, models.TableCustomers, codec, r)
			},
			func() error { return rewriteTable[models.Account](ctx, root, scratch, dataset, models.TableAccounts, codec, r) },
			func() error { return rewriteTable[models.Device](ctx, root, scratch, dataset, models.TableDevices, codec, r) },
			func() error { return rewriteTable[models.Merchant](ctx, root, scratch, dataset, models.TableMerchants, codec, r) },
			func() error {
				return rewriteTable[models.FraudTransaction](ctx, root, scratch, dataset, models.TableFraudTransactions, codec, r)
			},
			func() error {
				return rewriteTable[models.DeviceAccountUsage](ctx, root, scratch, dataset, models.TableDeviceAccountUsage, codec, r)
			},
		)
	}
	return nil
}

func rewriteTable[T any](ctx context.Context, root, scratch string, dataset models.UseCase, table string, codec models.Codec, r *Report) error {
	files, err := batch.ListFiles(root, dataset, table)
	if err != nil {
		return err
	}
	dir := filepath.Join(scratch, string(dataset), table)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst := filepath.Join(dir, filepath.Base(f))
		read, back, err := batch.Rewrite[T](f, dst, codec)
		if err != nil {
			return err
		}
		if read != back {
			r.violate("re-serializing %s changed the row count from %d to %d", f, read, back)
		}
		r.Rewritten++
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dst, err)
		}
	}
	return nil
}

func firstErr(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
