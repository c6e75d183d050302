package ports_test

import (
	"testing"

	"github.com/halayachts/hala-api/internal/mocks"
	authmocks "github.com/halayachts/hala-api/internal/mocks/auth"
	"github.com/halayachts/hala-api/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AdminRepository = (*authmocks.MemoryAdminRepository)(nil)
	var _ ports.PasswordHasher = authmocks.PlainHasher{}
	var _ ports.TokenIssuer = (*authmocks.MockTokenIssuer)(nil)

	var _ ports.AdminRepository = (*mocks.MockAdminRepository)(nil)
	var _ ports.RateLimitStore = (*mocks.MockRateLimitStore)(nil)
	var _ ports.ContactRepository = (*mocks.MockContactRepository)(nil)
	var _ ports.BookingRepository = (*mocks.MockBookingRepository)(nil)
	var _ ports.SubscriberRepository = (*mocks.MockSubscriberRepository)(nil)
	var _ ports.YachtRepository = (*mocks.MockYachtRepository)(nil)
	var _ ports.Mailer = (*mocks.MockMailer)(nil)
	var _ ports.StorageProvider = (*mocks.MockStorageProvider)(nil)
}
