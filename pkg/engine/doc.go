// Package engine turns reservation transitions into operator notifications
// and customer emails.
//
// The engine sits between the reservation store and the side-effect
// machinery: Save and Delete go through the store, and every resulting
// transition is recorded as an outbox event. A worker later hands each
// event back to the engine, which validates the customer address, sends
// the lifecycle email and persists the operator notification per the
// decision table. Nothing in that pipeline can fail a reservation write;
// processing errors are logged, retried by the outbox or folded into an
// urgent "email failed" notification for human follow-up.
package engine
