/*Package core holds the shared vocabulary of the backoffice service:
the storage operations, the mutation notifier interface and the error
taxonomy used by the store and HTTP layers.
*/
package core

// Operation represents a modifying backend storage operation, one of
// Create, Read, Update, Delete, List
type Operation string

// all supported database operations
const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationList   Operation = "list"
)

// Notifier receives a notification after a mutating operation has been
// committed. Implementations must not block the request path for long;
// the payload is the JSON representation of the affected record.
type Notifier interface {
	Notify(resource string, operation Operation, payload []byte)
}
