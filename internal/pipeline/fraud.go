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

package pipeline

import (
	"context"
	"fmt"
	"time"

	"olap-graph-datagen-go/internal/batch"
	"olap-graph-datagen-go/internal/entity"
	"olap-graph-datagen-go/internal/fraud"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"
	"olap-graph-datagen-go/internal/relation"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fraudDataset builds the entity pools, injects the pattern topologies into the
// reserved slices, writes the entities and then streams base account
// shards. Pattern rows are written under the shard after the last base
// shard.
func (p *Pipeline) fraudDataset(ctx context.Context, layout *entity.FraudLayout) (map[models.FraudPattern]int, error) {
	g := p.cfg.Generator
	opts := p.options(ctx)
	dataset := models.UseCaseFraud

	pools, err := entity.NewFraudFactory(g).Pools(ctx, layout)
	if err != nil {
		return nil, err
	}

	synth := relation.NewFraudSynthesizer(g, pools)
	n := shards(layout.Base.Accounts, g.ShardSize)

	patternShard := n
	stream := synth.Stream(random.NewSource(g.Seed, "fraud-patterns", patternShard), patternShard)
	result, err := fraud.NewInjector(g, pools, stream).Inject()
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.ObservePatterns(result.Instances)
	}
	for _, pattern := range models.AllFraudPatterns {
		zap.L().Info("Fraud pattern injected",
			zap.String("pattern", string(pattern)),
			zap.Int("instances", result.Instances[pattern]))
	}

	// entity pools are final once injection is done
	var tables errgroup.Group
	tables.SetLimit(g.Parallelism)
	tables.Go(func() error {
		_, err := batch.WriteAll(opts, dataset, models.TableCustomers, 0, pools.Customers)
		return wrapWrite(models.TableCustomers, err)
	})
	tables.Go(func() error {
		_, err := batch.WriteAll(opts, dataset, models.TableAccounts, 0, pools.Accounts)
		return wrapWrite(models.TableAccounts, err)
	})
	tables.Go(func() error {
		_, err := batch.WriteAll(opts, dataset, models.TableDevices, 0, pools.Devices)
		return wrapWrite(models.TableDevices, err)
	})
	tables.Go(func() error {
		_, err := batch.WriteAll(opts, dataset, models.TableMerchants, 0, pools.Merchants)
		return wrapWrite(models.TableMerchants, err)
	})
	tables.Go(func() error {
		_, err := batch.WriteAll(opts, dataset, models.TableFraudTransactions, patternShard, result.Transactions)
		return wrapWrite(models.TableFraudTransactions, err)
	})
	tables.Go(func() error {
		_, err := batch.WriteAll(opts, dataset, models.TableDeviceAccountUsage, patternShard, result.Usage)
		return wrapWrite(models.TableDeviceAccountUsage, err)
	})
	if err := tables.Wait(); err != nil {
		return nil, err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(g.Parallelism)
	for shard := 0; shard < n; shard++ {
		group.Go(func() error {
			return p.accountShard(ctx, opts, synth, layout, shard)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("Fraud dataset complete",
		zap.String("scale", layout.ScaleName),
		zap.Int("base_accounts", layout.Base.Accounts),
		zap.Int("shards", n))
	return result.Instances, nil
}

// accountShard relates one contiguous range of base accounts.
func (p *Pipeline) accountShard(ctx context.Context, opts batch.Options, synth *relation.FraudSynthesizer, layout *entity.FraudLayout, shard int) error {
	g := p.cfg.Generator
	dataset := models.UseCaseFraud
	start := time.Now()
	defer p.observeShard(dataset, start)

	stream := synth.Stream(random.NewSource(g.Seed, string(dataset), shard), shard)
	txns := batch.NewWriter[models.FraudTransaction](opts, dataset, models.TableFraudTransactions, shard)
	usage := batch.NewWriter[models.DeviceAccountUsage](opts, dataset, models.TableDeviceAccountUsage, shard)

	first := shard * g.ShardSize
	last := min(first+g.ShardSize, layout.Base.Accounts)
	for i := first; i < last; i++ {
		if (i-first)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := stream.Account(i, usage.Emit, txns.Emit); err != nil {
			return err
		}
	}

	if err := txns.Close(); err != nil {
		return err
	}
	if err := usage.Close(); err != nil {
		return err
	}

	zap.L().Debug("Account shard complete",
		zap.Int("shard", shard),
		zap.Int64("transactions", txns.Rows()),
		zap.Int64("usage", usage.Rows()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func wrapWrite(table string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", table, err)
	}
	return nil
}
