// Package mocks provides gomock implementations of the hala-api ports.
//
// The mocks are generated with go.uber.org/mock (gomock) from the interfaces in
// internal/ports and give tests a fluent API for setting expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockBookingRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(booking, nil)
package mocks

// Generate mock for AdminRepository interface from internal/ports package.
// Count, Create, ExistsByEmail, GetActiveByEmail, List, TouchLastLogin
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=admin_repository_mock.go github.com/halayachts/hala-api/internal/ports AdminRepository

// Generate mock for RateLimitStore interface from internal/ports package.
// Clear, Get, Increment, Lock
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=rate_limit_store_mock.go github.com/halayachts/hala-api/internal/ports RateLimitStore

// Generate mock for ContactRepository interface from internal/ports package.
// Create, List
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=contact_repository_mock.go github.com/halayachts/hala-api/internal/ports ContactRepository

// Generate mock for BookingRepository interface from internal/ports package.
// Create, List
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=booking_repository_mock.go github.com/halayachts/hala-api/internal/ports BookingRepository

// Generate mock for SubscriberRepository interface from internal/ports package.
// Create, Stats
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=subscriber_repository_mock.go github.com/halayachts/hala-api/internal/ports SubscriberRepository

// Generate mock for YachtRepository interface from internal/ports package.
// Create, List
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=yacht_repository_mock.go github.com/halayachts/hala-api/internal/ports YachtRepository

// Generate mock for Mailer interface from internal/ports package.
// Configured, Send
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=mailer_mock.go github.com/halayachts/hala-api/internal/ports Mailer

// Generate mock for StorageProvider interface from internal/ports package.
// Delete, PublicURL, Upload
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=storage_provider_mock.go github.com/halayachts/hala-api/internal/ports StorageProvider
