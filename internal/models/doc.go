// Package models defines the core domain models for FamilySync.
//
// # Models
//
//   - Member: a registered household member with a password gate
//   - Identity: who a session is acting as (Guest or a Member)
//   - Item: something stored somewhere in the house
//   - Bundle: the backup document written by export and read by import
//
// # Guest
//
// Guest is not a Member record. It is the zero value of Identity and has no
// password and no private-item capability. The number 0 only appears in the
// persisted form of an item owner (the "addedBy" field) and is never a valid
// Member ID.
//
// # Persisted format
//
// JSON field names match the format written by the FamilySync web app
// ("type" for visibility, "addedBy" for the owner), so its stored data and
// backup files load without conversion.
//
// # Errors
//
// Every core operation reports failures as *Error values with one of the
// kinds in errors.go. Callers branch with errors.Is against the ErrValidation,
// ErrAuth, ErrPermission, ErrStorage and ErrNotFound sentinels.
package models
