// Package models contains the GORM persistence models. Domain types stay
// free of ORM tags; repositories convert between the two.
//
//   - document.go: the schema-less documents table behind every collection
//   - credential.go: e-mail/password logins
package models
