package model

import "time"

// Authority roles.  An admin authority receives a copy of every
// permission request addressed to a non-admin authority.
const (
	AuthorityRoleAdmin     = "admin"
	AuthorityRoleAuthority = "authority"
)

// Designations an authority may hold.  The set is fixed; handlers
// reject anything else.
var AuthorityDesignations = []string{"Principal", "HOD", "Staff"}

// Authority represents a staff member empowered to approve or reject
// visitor requests, as stored in the `authorities` table.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – full name.
//  Designation – one of AuthorityDesignations.
//  Department  – optional department (nullable).
//  Phone       – optional phone number (nullable).
//  Email       – optional email address (nullable).
//  Role        – admin or authority.
//  IsActive    – whether the authority may be assigned new requests.
//  CreatedAt   – creation timestamp.
type Authority struct {
	ID          uint64    `json:"id"`          // authorities.id
	Name        string    `json:"name"`        // authorities.name
	Designation string    `json:"designation"` // authorities.designation
	Department  *string   `json:"department"`  // authorities.department (nullable)
	Phone       *string   `json:"phone"`       // authorities.phone (nullable)
	Email       *string   `json:"email"`       // authorities.email (nullable)
	Role        string    `json:"role"`        // authorities.role
	IsActive    bool      `json:"is_active"`   // authorities.is_active
	CreatedAt   time.Time `json:"created_at"`  // authorities.created_at
}

// ValidDesignation reports whether d is one of the fixed designations.
func ValidDesignation(d string) bool {
	for _, v := range AuthorityDesignations {
		if v == d {
			return true
		}
	}
	return false
}
