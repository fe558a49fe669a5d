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

package fraud

import (
	"sort"

	"olap-graph-datagen-go/internal/models"
)

// FindCycles returns directed transfer cycles with between minLen and
// maxLen distinct accounts. Each cycle is reported once, rotated so that
// its smallest account id comes first. Search stops after limit cycles
// when limit is positive.
func FindCycles(txns []models.FraudTransaction, minLen, maxLen, limit int) [][]string {
	graph := map[string][]string{}
	for _, t := range txns {
		if t.ToAccountId == "" || t.TransactionType != models.TxnTransfer {
			continue
		}
		graph[t.FromAccountId] = appendUnique(graph[t.FromAccountId], t.ToAccountId)
	}

	starts := make([]string, 0, len(graph))
	for a := range graph {
		starts = append(starts, a)
	}
	sort.Strings(starts)

	var cycles [][]string
	path := make([]string, 0, maxLen)
	onPath := map[string]bool{}

	var dfs func(start, node string) bool
	dfs = func(start, node string) bool {
		for _, next := range graph[node] {
			if next == start && len(path) >= minLen {
				cycles = append(cycles, append([]string(nil), path...))
				if limit > 0 && len(cycles) >= limit {
					return true
				}
				continue
			}
			// only walk ids above the start so each cycle has one owner
			if next <= start || onPath[next] || len(path) >= maxLen {
				continue
			}
			path = append(path, next)
			onPath[next] = true
			done := dfs(start, next)
			onPath[next] = false
			path = path[:len(path)-1]
			if done {
				return true
			}
		}
		return false
	}

	for _, s := range starts {
		path = append(path[:0], s)
		onPath[s] = true
		done := dfs(s, s)
		onPath[s] = false
		if done {
			break
		}
	}
	return cycles
}

// DeviceFanOut counts distinct accounts per device and keeps devices with
// at least threshold accounts.
func DeviceFanOut(usage []models.DeviceAccountUsage, threshold int) map[string]int {
	accounts := map[string]map[string]bool{}
	for _, u := range usage {
		if accounts[u.DeviceId] == nil {
			accounts[u.DeviceId] = map[string]bool{}
		}
		accounts[u.DeviceId][u.AccountId] = true
	}
	out := map[string]int{}
	for d, set := range accounts {
		if len(set) >= threshold {
			out[d] = len(set)
		}
	}
	return out
}

// IdentityGroup is a set of customers sharing one identity attribute value.
type IdentityGroup struct {
	Attribute string
	Value     string
	Customers []string
}

// SharedIdentities groups customers sharing an ssn hash, phone or address
// and keeps groups of at least minSize.
func SharedIdentities(customers []models.FraudCustomer, minSize int) []IdentityGroup {
	type key struct{ attr, value string }
	groups := map[key][]string{}
	for _, c := range customers {
		groups[key{"ssn_hash", c.SsnHash}] = append(groups[key{"ssn_hash", c.SsnHash}], c.CustomerId)
		groups[key{"phone", c.Phone}] = append(groups[key{"phone", c.Phone}], c.CustomerId)
		addr := c.Address + "|" + c.City + "|" + c.State + "|" + c.ZipCode
		groups[key{"address", addr}] = append(groups[key{"address", addr}], c.CustomerId)
	}

	var out []IdentityGroup
	for k, ids := range groups {
		if len(ids) >= minSize {
			out = append(out, IdentityGroup{Attribute: k.attr, Value: k.value, Customers: ids})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attribute != out[j].Attribute {
			return out[i].Attribute < out[j].Attribute
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Bipartite is a connected account-merchant component of payments.
type Bipartite struct {
	Accounts  []string
	Merchants []string
	Edges     int
}

// Density is the share of possible account-merchant pairs that transacted.
func (b Bipartite) Density() float64 {
	possible := len(b.Accounts) * len(b.Merchants)
	if possible == 0 {
		return 0
	}
	return float64(b.Edges) / float64(possible)
}

// PaymentComponents splits account-to-merchant payments into connected
// components.
func PaymentComponents(txns []models.FraudTransaction) []Bipartite {
	parent := map[string]string{}
	var find func(string) string
	find = func(x string) string {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	type edge struct{ account, merchant string }
	edges := map[edge]bool{}
	for _, t := range txns {
		if t.MerchantId == "" {
			continue
		}
		a, m := "a:"+t.FromAccountId, "m:"+t.MerchantId
		for _, n := range []string{a, m} {
			if _, ok := parent[n]; !ok {
				parent[n] = n
			}
		}
		union(a, m)
		edges[edge{t.FromAccountId, t.MerchantId}] = true
	}

	components := map[string]*Bipartite{}
	for n := range parent {
		root := find(n)
		b := components[root]
		if b == nil {
			b = &Bipartite{}
			components[root] = b
		}
		if n[0] == 'a' {
			b.Accounts = append(b.Accounts, n[2:])
		} else {
			b.Merchants = append(b.Merchants, n[2:])
		}
	}
	for e := range edges {
		components[find("a:"+e.account)].Edges++
	}

	out := make([]Bipartite, 0, len(components))
	for _, b := range components {
		sort.Strings(b.Accounts)
		sort.Strings(b.Merchants)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Accounts[0] < out[j].Accounts[0] })
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
