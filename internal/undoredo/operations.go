package undoredo

import (
	"context"
	"fmt"

	"github.com/cardfolio/cardfolio/internal/models"
)

// cardAdded: inverse is delete-by-id, redo re-inserts the snapshot with
// its original id.
type cardAdded struct {
	card models.Card
}

func (o *cardAdded) description() string {
	return fmt.Sprintf("add card %q", o.card.Name)
}

func (o *cardAdded) undo(ctx context.Context, cards CardStore, _ SaleStore) error {
	return cards.Delete(ctx, o.card.ID)
}

func (o *cardAdded) redo(ctx context.Context, cards CardStore, _ SaleStore) error {
	c := o.card
	if err := cards.Add(ctx, &c); err != nil {
		return err
	}
	o.card = c
	return nil
}

// cardUpdated: inverse re-applies the previous field values, redo the
// updated ones. version tracks the stored token across the cycle so each
// apply carries the token the row really has; a concurrent edit from
// outside the log still trips the conflict check.
type cardUpdated struct {
	previous models.Card
	updated  models.Card
	version  int
}

func (o *cardUpdated) description() string {
	return fmt.Sprintf("update card %q", o.updated.Name)
}

func (o *cardUpdated) undo(ctx context.Context, cards CardStore, _ SaleStore) error {
	prev := o.previous
	prev.Version = o.version
	if err := cards.Update(ctx, &prev); err != nil {
		return err
	}
	o.version = prev.Version
	return nil
}

func (o *cardUpdated) redo(ctx context.Context, cards CardStore, _ SaleStore) error {
	next := o.updated
	next.Version = o.version
	if err := cards.Update(ctx, &next); err != nil {
		return err
	}
	o.version = next.Version
	return nil
}

// cardDeleted: inverse re-adds the snapshot, keeping its original id.
type cardDeleted struct {
	card models.Card
}

func (o *cardDeleted) description() string {
	return fmt.Sprintf("delete card %q", o.card.Name)
}

func (o *cardDeleted) undo(ctx context.Context, cards CardStore, _ SaleStore) error {
	c := o.card
	if err := cards.Add(ctx, &c); err != nil {
		return err
	}
	o.card = c
	return nil
}

func (o *cardDeleted) redo(ctx context.Context, cards CardStore, _ SaleStore) error {
	return cards.Delete(ctx, o.card.ID)
}

// saleAdded: inverse deletes the sale, which restores the card quantity;
// redo re-records it, decrementing again.
type saleAdded struct {
	sale models.Sale
}

func (o *saleAdded) description() string {
	return fmt.Sprintf("add sale of card %d", o.sale.CardID)
}

func (o *saleAdded) undo(ctx context.Context, _ CardStore, sales SaleStore) error {
	return sales.Delete(ctx, o.sale.ID)
}

func (o *saleAdded) redo(ctx context.Context, _ CardStore, sales SaleStore) error {
	s := o.sale
	if err := sales.Add(ctx, &s); err != nil {
		return err
	}
	o.sale = s
	return nil
}

// saleUpdated: same token threading as cardUpdated. Sale updates never
// touch card quantity, in either direction.
type saleUpdated struct {
	previous models.Sale
	updated  models.Sale
	version  int
}

func (o *saleUpdated) description() string {
	return fmt.Sprintf("update sale %d", o.updated.ID)
}

func (o *saleUpdated) undo(ctx context.Context, _ CardStore, sales SaleStore) error {
	prev := o.previous
	prev.Version = o.version
	if err := sales.Update(ctx, &prev); err != nil {
		return err
	}
	o.version = prev.Version
	return nil
}

func (o *saleUpdated) redo(ctx context.Context, _ CardStore, sales SaleStore) error {
	next := o.updated
	next.Version = o.version
	if err := sales.Update(ctx, &next); err != nil {
		return err
	}
	o.version = next.Version
	return nil
}

// saleDeleted: inverse re-adds the sale snapshot (decrementing the card
// again), redo deletes it once more.
type saleDeleted struct {
	sale models.Sale
}

func (o *saleDeleted) description() string {
	return fmt.Sprintf("delete sale %d", o.sale.ID)
}

func (o *saleDeleted) undo(ctx context.Context, _ CardStore, sales SaleStore) error {
	s := o.sale
	if err := sales.Add(ctx, &s); err != nil {
		return err
	}
	o.sale = s
	return nil
}

func (o *saleDeleted) redo(ctx context.Context, _ CardStore, sales SaleStore) error {
	return sales.Delete(ctx, o.sale.ID)
}
