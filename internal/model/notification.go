package model

import "time"

// NotificationTypeVisitorRequest tags notifications produced by the
// admission workflow's fan-out.
const NotificationTypeVisitorRequest = "visitor_request"

// Notification is one message addressed to an authority about a
// visitor event, as stored in the `notifications` table.  A
// notification always references a visitor row that existed when it
// was created; the workflow never writes a notification before the
// visitor insert has succeeded.
//
// Fields:
//  ID          – primary key identifier.
//  VisitorID   – visitor the notification is about.
//  AuthorityID – authority it is addressed to.
//  Type        – type tag, currently always visitor_request.
//  Title       – short headline shown in the notification list.
//  Message     – full human-readable message.
//  IsRead      – read flag; flipped when any authority acts on the visitor.
//  CreatedAt   – creation timestamp.
type Notification struct {
	ID          uint64    `json:"id"`           // notifications.id
	VisitorID   uint64    `json:"visitor_id"`   // notifications.visitor_id
	AuthorityID uint64    `json:"authority_id"` // notifications.authority_id
	Type        string    `json:"type"`         // notifications.type
	Title       string    `json:"title"`        // notifications.title
	Message     string    `json:"message"`      // notifications.message
	IsRead      bool      `json:"is_read"`      // notifications.is_read
	CreatedAt   time.Time `json:"created_at"`   // notifications.created_at
}
