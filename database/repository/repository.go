package repository

import (
	"fmt"

	bookingRepo "m3allem/database/repository/booking"
	jobRepo "m3allem/database/repository/job"
	notificationRepo "m3allem/database/repository/notification"
	paymentRepo "m3allem/database/repository/payment"
	reviewRepo "m3allem/database/repository/review"
	technicianRepo "m3allem/database/repository/technician"
	userRepo "m3allem/database/repository/user"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	JobRepository          = jobRepo.JobRepository
	TechnicianRepository   = technicianRepo.TechnicianRepository
	BookingRepository      = bookingRepo.BookingRepository
	ReviewRepository       = reviewRepo.ReviewRepository
	PaymentRepository      = paymentRepo.PaymentRepository
	UserRepository         = userRepo.UserRepository
	NotificationRepository = notificationRepo.NotificationRepository
)

// Store bundles every repository the services need.
type Store struct {
	Jobs          JobRepository
	Technicians   TechnicianRepository
	Bookings      BookingRepository
	Reviews       ReviewRepository
	Payments      PaymentRepository
	Users         UserRepository
	Notifications NotificationRepository
}

// NewMemoryStore returns a Store backed by in-process maps.
func NewMemoryStore() *Store {
	technicians := technicianRepo.NewMemoryTechnicianRepo()
	return &Store{
		Jobs:          jobRepo.NewMemoryJobRepo(),
		Technicians:   technicians,
		Bookings:      bookingRepo.NewMemoryBookingRepo(),
		Reviews:       reviewRepo.NewMemoryReviewRepo(technicians),
		Payments:      paymentRepo.NewMemoryPaymentRepo(),
		Users:         userRepo.NewMemoryUserRepo(),
		Notifications: notificationRepo.NewMemoryNotificationRepo(),
	}
}

// NewMongoStore returns a Store backed by MongoDB collections of db, creating indexes.
func NewMongoStore(db *mongo.Database) (*Store, error) {
	jobs, err := jobRepo.NewMongoJobRepo(db)
	if err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}
	technicians, err := technicianRepo.NewMongoTechnicianRepo(db)
	if err != nil {
		return nil, fmt.Errorf("technicians: %w", err)
	}
	bookings, err := bookingRepo.NewMongoBookingRepo(db)
	if err != nil {
		return nil, fmt.Errorf("bookings: %w", err)
	}
	reviews, err := reviewRepo.NewMongoReviewRepo(db, technicians.Collection())
	if err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}
	payments, err := paymentRepo.NewMongoPaymentRepo(db)
	if err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}
	users, err := userRepo.NewMongoUserRepo(db)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	notifications, err := notificationRepo.NewMongoNotificationRepo(db)
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	return &Store{
		Jobs:          jobs,
		Technicians:   technicians,
		Bookings:      bookings,
		Reviews:       reviews,
		Payments:      payments,
		Users:         users,
		Notifications: notifications,
	}, nil
}
