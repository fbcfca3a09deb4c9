package models

import "github.com/google/uuid"

// assignID fills a missing primary key on create. Postgres columns also
// default to gen_random_uuid(); SQLite has no equivalent.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
