package model

import "time"

// Role names stored in users.role.  New accounts always start as
// RoleCustomer; admins are promoted out of band.
const (
    RoleCustomer = "customer"
    RoleAdmin    = "admin"
)

// User represents an application user record as stored in the `users`
// table.  The json tags are omitted because handlers define their own
// response shapes and PasswordHash must never be serialised.
//
// Fields:
//  ID           – opaque identifier (UUID string).
//  Email        – unique email address, compared exactly as stored.
//  PasswordHash – bcrypt or argon2id digest.
//  Name         – optional display name.
//  Role         – capability tag (customer or admin).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           string    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Name         *string   // users.name (nullable)
    Role         string    // users.role
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}
