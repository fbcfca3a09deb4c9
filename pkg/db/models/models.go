package models

// All lists every persisted model, in dependency order. Used by tests and SQLite auto-migration.
func All() []any {
	return []any{
		&Seller{},
		&Product{},
		&CartItem{},
		&Address{},
		&Order{},
		&OrderDetail{},
		&Review{},
		&OutboxEvent{},
	}
}
