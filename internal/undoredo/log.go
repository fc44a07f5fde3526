// Package undoredo keeps an in-memory, per-session log of reversible card
// and sale operations. The model is linear: recording a new operation
// discards any redo history, and a failed inverse leaves the operation on
// its stack so the caller can retry or abandon.
package undoredo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cardfolio/cardfolio/internal/models"
)

// CardStore is the slice of the card repository the log replays through.
type CardStore interface {
	Add(ctx context.Context, card *models.Card) error
	Update(ctx context.Context, card *models.Card) error
	Delete(ctx context.Context, id uint) error
}

// SaleStore is the slice of the sale repository the log replays through.
type SaleStore interface {
	Add(ctx context.Context, sale *models.Sale) error
	Update(ctx context.Context, sale *models.Sale) error
	Delete(ctx context.Context, id uint) error
}

// operation is one reversible action. Each concrete type carries its own
// strongly typed snapshots; there is no untyped payload to inspect at
// runtime. undo and redo mutate the receiver so the operation always holds
// the entity state it last committed (ids assigned on re-insert, advanced
// version tokens).
type operation interface {
	description() string
	undo(ctx context.Context, cards CardStore, sales SaleStore) error
	redo(ctx context.Context, cards CardStore, sales SaleStore) error
}

type entry struct {
	op         operation
	recordedAt time.Time
}

// Log holds the undo and redo stacks. Stores are injected once at
// construction; the log never reaches for ambient state.
type Log struct {
	mu    sync.Mutex
	cards CardStore
	sales SaleStore
	undo  []entry
	redo  []entry
}

func NewLog(cards CardStore, sales SaleStore) *Log {
	return &Log{cards: cards, sales: sales}
}

func (l *Log) record(op operation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = append(l.undo, entry{op: op, recordedAt: time.Now()})
	l.redo = nil
	slog.Debug("operation recorded", slog.String("op", op.description()))
}

// RecordCardAdded notes that card was just created. card must carry the
// assigned id and current version token.
func (l *Log) RecordCardAdded(card models.Card) {
	l.record(&cardAdded{card: card})
}

// RecordCardUpdated notes a card edit. previous is the state before the
// edit; updated the state after, carrying the advanced version token.
func (l *Log) RecordCardUpdated(previous, updated models.Card) {
	l.record(&cardUpdated{previous: previous, updated: updated, version: updated.Version})
}

// RecordCardDeleted notes that card was just deleted; the snapshot is what
// an undo will re-add.
func (l *Log) RecordCardDeleted(card models.Card) {
	l.record(&cardDeleted{card: card})
}

// RecordSaleAdded notes that sale was just created (and the card quantity
// decremented).
func (l *Log) RecordSaleAdded(sale models.Sale) {
	l.record(&saleAdded{sale: sale})
}

// RecordSaleUpdated notes a sale edit.
func (l *Log) RecordSaleUpdated(previous, updated models.Sale) {
	l.record(&saleUpdated{previous: previous, updated: updated, version: updated.Version})
}

// RecordSaleDeleted notes that sale was just deleted (and the card
// quantity restored).
func (l *Log) RecordSaleDeleted(sale models.Sale) {
	l.record(&saleDeleted{sale: sale})
}

// Undo reverses the most recent operation through the repositories. It is
// a no-op when nothing is left to undo. On failure the operation stays on
// the undo stack and the repository error propagates; the log never drops
// a failed undo.
func (l *Log) Undo(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.undo) == 0 {
		return nil
	}

	e := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]

	if err := e.op.undo(ctx, l.cards, l.sales); err != nil {
		l.undo = append(l.undo, e)
		return fmt.Errorf("undo %s: %w", e.op.description(), err)
	}

	slog.Info("operation undone", slog.String("op", e.op.description()))
	l.redo = append(l.redo, e)
	return nil
}

// Redo re-applies the most recently undone operation. Symmetric to Undo:
// on failure the operation stays on the redo stack.
func (l *Log) Redo(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.redo) == 0 {
		return nil
	}

	e := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]

	if err := e.op.redo(ctx, l.cards, l.sales); err != nil {
		l.redo = append(l.redo, e)
		return fmt.Errorf("redo %s: %w", e.op.description(), err)
	}

	slog.Info("operation redone", slog.String("op", e.op.description()))
	l.undo = append(l.undo, e)
	return nil
}

// Clear empties both stacks. The log is in-memory only, so there is
// nothing durable to reconcile.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = nil
	l.redo = nil
	slog.Debug("undo/redo history cleared")
}

func (l *Log) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo) > 0
}

func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.redo) > 0
}

// UndoDescription previews the operation Undo would reverse, or "" when
// the stack is empty.
func (l *Log) UndoDescription() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.undo) == 0 {
		return ""
	}
	return l.undo[len(l.undo)-1].op.description()
}

// RedoDescription previews the operation Redo would re-apply, or "" when
// the stack is empty.
func (l *Log) RedoDescription() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.redo) == 0 {
		return ""
	}
	return l.redo[len(l.redo)-1].op.description()
}
