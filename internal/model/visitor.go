package model

import "time"

// Visitor lifecycle statuses.  A visitor enters the system as
// pending (when an authority must grant permission) or approved
// (walk-in with no authority selected).  rejected and exited are
// terminal; no transition leaves them.
const (
	VisitorStatusPending  = "pending"
	VisitorStatusApproved = "approved"
	VisitorStatusRejected = "rejected"
	VisitorStatusExited   = "exited"
)

// Visitor represents one person registered at the gate, as stored in
// the `visitors` table.  Optional columns are pointers so that NULL
// survives the round trip instead of collapsing to a zero value.
//
// Fields:
//  ID                  – primary key identifier.
//  Name                – visitor's full name.
//  Phone               – contact phone number.
//  Email               – contact email address.
//  Purpose             – free-text purpose of the visit.
//  AuthorityID         – authority asked for permission (nullable).
//  Status              – pending, approved, rejected or exited.
//  PhotoURL            – public URL of the captured photo (nullable).
//  Notes               – additional free-text notes (nullable).
//  CreatedBy           – username of the gatekeeper who registered the entry.
//  PermissionRequired  – true iff an authority was selected at creation.
//  PermissionGranted   – true iff no permission was needed or an authority approved.
//  PermissionGrantedAt – set exactly when PermissionGranted becomes true.
//  EntryTime           – when the visitor entered.
//  ExitTime            – when the visitor left; set iff status is exited.
type Visitor struct {
	ID                  uint64     `json:"id"`                    // visitors.id
	Name                string     `json:"name"`                  // visitors.name
	Phone               string     `json:"phone"`                 // visitors.phone
	Email               string     `json:"email"`                 // visitors.email
	Purpose             string     `json:"purpose"`               // visitors.purpose
	AuthorityID         *uint64    `json:"authority_id"`          // visitors.authority_id (nullable)
	Status              string     `json:"status"`                // visitors.status
	PhotoURL            *string    `json:"photo_url"`             // visitors.photo_url (nullable)
	Notes               *string    `json:"notes"`                 // visitors.notes (nullable)
	CreatedBy           string     `json:"created_by"`            // visitors.created_by
	PermissionRequired  bool       `json:"authority_permission_required"` // visitors.authority_permission_required
	PermissionGranted   bool       `json:"authority_permission_granted"`  // visitors.authority_permission_granted
	PermissionGrantedAt *time.Time `json:"permission_granted_at"` // visitors.permission_granted_at (nullable)
	EntryTime           time.Time  `json:"entry_time"`            // visitors.entry_time
	ExitTime            *time.Time `json:"exit_time"`             // visitors.exit_time (nullable)
}

// Terminal reports whether the visitor has reached a state that no
// gate action may leave.
func (v *Visitor) Terminal() bool {
	return v.Status == VisitorStatusRejected || v.Status == VisitorStatusExited
}
