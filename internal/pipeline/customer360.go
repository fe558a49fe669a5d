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
	"olap-graph-datagen-go/internal/fixtures"
	"olap-graph-datagen-go/internal/models"
	"olap-graph-datagen-go/internal/random"
	"olap-graph-datagen-go/internal/relation"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ctxCheckEvery bounds how many customers a shard generates between
// cancellation checks.
const ctxCheckEvery = 1024

// customer360 materializes the product pool, writes the anchors and then
// streams customer shards through the worker pool.
func (p *Pipeline) customer360(ctx context.Context) error {
	g := p.cfg.Generator
	opts := p.options(ctx)
	dataset := models.UseCaseCustomer360

	factory := entity.NewFactory(g)
	products := factory.Products(entity.ProductCount(g.CustomerScale))
	if _, err := batch.WriteAll(opts, dataset, models.TableProducts, 0, products); err != nil {
		return fmt.Errorf("failed to write products: %w", err)
	}
	catalog := entity.NewCatalog(products)
	zap.L().Info("Product pool written", zap.Int("products", len(products)))

	if g.IncludeFixtures {
		if err := p.writeAnchors(opts); err != nil {
			return err
		}
	}

	synth := relation.NewSynthesizer(g, catalog)
	n := shards(g.CustomerScale, g.ShardSize)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(g.Parallelism)
	for shard := 0; shard < n; shard++ {
		group.Go(func() error {
			return p.customerShard(ctx, opts, factory, synth, shard)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	zap.L().Info("Customer 360 dataset complete", zap.Int("shards", n))
	return nil
}

// customerShard creates, relates and writes one contiguous range of
// customers. Customers are dropped as soon as their rows are buffered.
func (p *Pipeline) customerShard(ctx context.Context, opts batch.Options, factory *entity.Factory, synth *relation.Synthesizer, shard int) error {
	g := p.cfg.Generator
	dataset := models.UseCaseCustomer360
	start := time.Now()
	defer p.observeShard(dataset, start)

	src := random.NewSource(g.Seed, string(dataset), shard)
	stream := synth.Stream(src, shard)
	customers := batch.NewWriter[models.Customer](opts, dataset, models.TableCustomers, shard)
	transactions := batch.NewWriter[models.Transaction](opts, dataset, models.TableTransactions, shard)
	interactions := batch.NewWriter[models.Interaction](opts, dataset, models.TableInteractions, shard)

	first := int64(shard) * int64(g.ShardSize)
	last := min(first+int64(g.ShardSize), int64(g.CustomerScale))
	for idx := first; idx < last; idx++ {
		if (idx-first)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		profile := factory.Customer(src, idx)
		if err := customers.Write(profile.Customer); err != nil {
			return err
		}
		if err := stream.Transactions(&profile, transactions.Emit); err != nil {
			return err
		}
		if err := stream.Interactions(&profile, interactions.Emit); err != nil {
			return err
		}
	}

	for _, w := range []interface{ Close() error }{customers, transactions, interactions} {
		if err := w.Close(); err != nil {
			return err
		}
	}

	zap.L().Debug("Customer shard complete",
		zap.Int("shard", shard),
		zap.Int64("customers", customers.Rows()),
		zap.Int64("transactions", transactions.Rows()),
		zap.Int64("interactions", interactions.Rows()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (p *Pipeline) writeAnchors(opts batch.Options) error {
	anchors := fixtures.Build(p.cfg.Generator)
	dataset := models.UseCaseCustomer360

	if _, err := batch.WriteAll(opts, dataset, models.TableCustomers, fixtures.Shard, anchors.Customers); err != nil {
		return fmt.Errorf("failed to write anchor customers: %w", err)
	}
	if _, err := batch.WriteAll(opts, dataset, models.TableProducts, fixtures.Shard, anchors.Products); err != nil {
		return fmt.Errorf("failed to write anchor products: %w", err)
	}
	if _, err := batch.WriteAll(opts, dataset, models.TableTransactions, fixtures.Shard, anchors.Transactions); err != nil {
		return fmt.Errorf("failed to write anchor transactions: %w", err)
	}
	if _, err := batch.WriteAll(opts, dataset, models.TableInteractions, fixtures.Shard, anchors.Interactions); err != nil {
		return fmt.Errorf("failed to write anchor interactions: %w", err)
	}

	zap.L().Info("Anchor dataset written",
		zap.Int("customers", len(anchors.Customers)),
		zap.Int("products", len(anchors.Products)),
		zap.Int("transactions", len(anchors.Transactions)))
	return nil
}
