// Package memory implementación en memoria de los repositorios del ledger.
// Se usa en los tests y con APP_STORE=memory para levantar la API sin PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/dynsoft/pharma-ledger/internal/application/inventory"
	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
	"github.com/dynsoft/pharma-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado compartido por todos los repositorios en memoria.
// Run serializa las transacciones (equivalente a bloquear todas las filas) y deshace
// las escrituras de la transacción si fn devuelve error.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	products  map[string]*entity.Product
	movements []*entity.StockMovement
	prices    []*entity.PriceChange
	supplies  map[string]*entity.Supply
	sales     map[string]*entity.Sale
	returns   []*entity.SaleReturn
	settings  map[string]*entity.Settings
	sequences map[string]int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		supplies:  make(map[string]*entity.Supply),
		sales:     make(map[string]*entity.Sale),
		settings:  make(map[string]*entity.Settings),
		sequences: make(map[string]int64),
	}
}

// undoLog escrituras a revertir si la transacción falla. nil fuera de transacción.
type undoLog struct {
	fns []func()
}

func (u *undoLog) push(fn func()) {
	if u != nil {
		u.fns = append(u.fns, fn)
	}
}

// Run ejecuta fn con repositorios atados a una transacción en memoria.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	undo := &undoLog{}
	if err := fn(s.repos(undo)); err != nil {
		s.mu.Lock()
		for i := len(undo.fns) - 1; i >= 0; i-- {
			undo.fns[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) repos(undo *undoLog) inventory.Repos {
	return inventory.Repos{
		Products:  &productRepo{s: s, undo: undo},
		Movements: &movementRepo{s: s, undo: undo},
		Prices:    &priceRepo{s: s, undo: undo},
		Supplies:  &supplyRepo{s: s, undo: undo},
		Sales:     &saleRepo{s: s, undo: undo},
		Returns:   &returnRepo{s: s, undo: undo},
	}
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Movements diario de stock fuera de transacción.
func (s *Store) Movements() repository.StockMovementRepository { return &movementRepo{s: s} }

// Prices historial de precios fuera de transacción.
func (s *Store) Prices() repository.PriceHistoryRepository { return &priceRepo{s: s} }

// Supplies repositorio de aprovisionamientos fuera de transacción.
func (s *Store) Supplies() repository.SupplyRepository { return &supplyRepo{s: s} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() repository.SaleRepository { return &saleRepo{s: s} }

// Returns repositorio de devoluciones fuera de transacción.
func (s *Store) Returns() repository.ReturnRepository { return &returnRepo{s: s} }

// Settings parámetros por agencia.
func (s *Store) Settings() repository.SettingsRepository { return &settingsRepo{s: s} }

func key(tenantID, id string) string { return tenantID + "/" + id }

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
