package model

// Appointment is one booking in the `appointments` collection, stored
// exactly as the booking client sent it. The service itself only reads
// the fields named by the Field* constants; everything else (patient
// name, phone, service, slot, price, ...) passes through untouched.
//
// Date holds the calendar day in the client's "Mon Jan 02 2006" form.
type Appointment map[string]interface{}

// Payment is the confirmation relayed by the client after the charge
// succeeded at the processor (amount, created, last4, transaction, ...).
// It is stored verbatim under Appointment[FieldPayment].
type Payment map[string]interface{}

// Document keys the service reads or writes.
const (
	FieldID      = "_id"
	FieldEmail   = "email"
	FieldDate    = "date"
	FieldPayment = "payment"
	FieldRole    = "role"
)

// Email returns the patient's email, or "" when absent or not a string.
func (a Appointment) Email() string { return stringField(a, FieldEmail) }

// Without returns a shallow copy of doc minus the given keys.
func Without(doc map[string]interface{}, keys ...string) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func stringField(doc map[string]interface{}, key string) string {
	s, _ := doc[key].(string)
	return s
}
