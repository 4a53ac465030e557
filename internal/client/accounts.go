// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/MKhiriev/go-ledger-sync/internal/adapter"
	"github.com/MKhiriev/go-ledger-sync/internal/cursor"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/persist"
	"github.com/MKhiriev/go-ledger-sync/internal/task"
	"github.com/MKhiriev/go-ledger-sync/models"
)

// Local KV namespaces.
const (
	accountNamespace = "account"
	walletNamespace  = "wallet"
)

const accountStatusActive = "active"

type account struct {
	address string
	state   *persist.Item[models.AccountState]
	view    *persist.Item[models.WalletView]
	refresh *task.Task
	// stopView detaches the wallet view from state.
	stopView func()
}

// accountSync keeps one persisted AccountState per watched address and a
// WalletView derived from it.
//
// A new block session refreshes every account; a delta refreshes only the
// watched accounts it touches. Refreshes run as tasks, so a burst of deltas
// for one account collapses into at most one extra fetch.
type accountSync struct {
	chain  adapter.ChainAdapter
	logger *logger.Logger

	mu       sync.Mutex
	target   int64
	accounts map[string]*account
}

func newAccountSync(ctx context.Context, chain adapter.ChainAdapter, kv persist.KV, addresses []string, log *logger.Logger, opts ...task.Option) (*accountSync, error) {
	s := &accountSync{
		chain:    chain,
		logger:   log.WithComponent("accounts"),
		accounts: make(map[string]*account, len(addresses)),
	}

	states := persist.NewCollection[string](kv, accountNamespace, persist.JSONCodec[models.AccountState]{}, log)
	views := persist.NewCollection[string](kv, walletNamespace, persist.JSONCodec[models.WalletView]{}, log)

	for _, address := range addresses {
		if _, ok := s.accounts[address]; ok {
			continue
		}

		state, err := states.Item(ctx, address)
		if err != nil {
			s.stop()
			return nil, err
		}
		view, err := views.Item(ctx, address)
		if err != nil {
			s.stop()
			return nil, err
		}

		a := &account{address: address, state: state, view: view}
		a.refresh = task.New(ctx, "account:"+address, func(ctx context.Context) error {
			return s.refresh(ctx, a)
		}, opts...)
		_, a.stopView = task.Dependent[models.AccountState](ctx, "wallet:"+address, state,
			func(ctx context.Context, st models.AccountState) error {
				return view.Set(ctx, walletView(st))
			}, opts...)

		s.accounts[address] = a
	}

	return s, nil
}

// onNewSession refreshes every account at the session's first block.
func (s *accountSync) onNewSession(c cursor.Cursor) {
	s.advance(c.Seqno)
	for _, a := range s.list() {
		a.refresh.Invalidate()
	}
}

// onDelta refreshes the watched accounts whose last transaction changed.
func (s *accountSync) onDelta(d cursor.Delta) {
	s.advance(d.Seqno)
	for address, change := range d.Payload {
		a, ok := s.get(address)
		if !ok {
			continue
		}
		if st, ok := a.state.Value(); ok && st.Last != nil && st.Last.LT == change.LT && st.Last.Hash == change.Hash {
			continue
		}
		a.refresh.Invalidate()
	}
}

// invalidate schedules a refresh of address at the latest known block.
func (s *accountSync) invalidate(address string) {
	if a, ok := s.get(address); ok {
		a.refresh.Invalidate()
	}
}

// refreshAll refreshes every account and waits for all of them.
func (s *accountSync) refreshAll(ctx context.Context) error {
	accounts := s.list()
	errs := make(chan error, len(accounts))
	for _, a := range accounts {
		go func() {
			errs <- a.refresh.InvalidateAndAwait(ctx)
		}()
	}

	var first error
	for range accounts {
		if err := <-errs; err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *accountSync) refresh(ctx context.Context, a *account) error {
	seqno := s.targetSeqno()
	if seqno == 0 {
		latest, err := s.chain.LatestBlock(ctx)
		if err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
		s.advance(latest)
		seqno = s.targetSeqno()
	}

	if current, ok := a.state.Value(); ok && current.Seqno >= seqno {
		return nil
	}

	lite, err := s.chain.AccountLite(ctx, seqno, a.address)
	if err != nil {
		return fmt.Errorf("account %s at %d: %w", a.address, seqno, err)
	}

	next := models.AccountState{
		Address: a.address,
		Seqno:   seqno,
		Balance: lite.Balance.Coins,
		Status:  lite.State.Type,
		Last:    lite.Last,
	}
	if err := a.state.Set(ctx, next); err != nil {
		return err
	}

	s.logger.Debug().
		Str("func", "*accountSync.refresh").
		Str("address", a.address).
		Int64("seqno", seqno).
		Msg("account refreshed")
	return nil
}

// wallets returns the derived views sorted by address.
func (s *accountSync) wallets() []models.WalletView {
	accounts := s.list()
	views := make([]models.WalletView, 0, len(accounts))
	for _, a := range accounts {
		if v, ok := a.view.Value(); ok {
			views = append(views, v)
		}
	}
	return views
}

// subscribe registers fn for every wallet view change.
func (s *accountSync) subscribe(fn func()) func() {
	accounts := s.list()
	unsubs := make([]func(), 0, len(accounts))
	for _, a := range accounts {
		unsubs = append(unsubs, a.view.Subscribe(func(models.WalletView) { fn() }))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (s *accountSync) stop() {
	for _, a := range s.list() {
		a.stopView()
		a.refresh.Stop()
	}
}

// advance moves the fetch target forward. It never moves back.
func (s *accountSync) advance(seqno int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seqno > s.target {
		s.target = seqno
	}
}

func (s *accountSync) targetSeqno() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *accountSync) get(address string) (*account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[address]
	return a, ok
}

func (s *accountSync) list() []*account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].address < out[j].address })
	return out
}

func walletView(st models.AccountState) models.WalletView {
	return models.WalletView{
		Address:  st.Address,
		Balance:  st.Balance,
		Active:   st.Status == accountStatusActive,
		SyncedAt: st.Seqno,
	}
}
