package models

import "github.com/google/uuid"

// ensureID populates a uuid primary key before insert so the models behave the
// same on Postgres and the sqlite dev/test driver.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
