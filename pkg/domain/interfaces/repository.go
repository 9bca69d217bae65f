package interfaces

// Repository defines the interface for the entity store
type Repository interface {
	Action() ActionRepository
	Task() TaskRepository
	Notification() NotificationRepository
	User() UserRepository

	Close() error
}
