package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mathrand "math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
	"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Daniel", "Nancy", "Matthew", "Lisa",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
}

var positions = []string{"Cashier", "Barista", "Cook", "Host", "Cleaner"}

var digits = "0123456789"

func GenerateRandomName() (firstName, lastName string) {
	return firstNames[mathrand.Intn(len(firstNames))], lastNames[mathrand.Intn(len(lastNames))]
}

func GenerateEmailFromName(firstName, lastName, domainName string) string {
	local := strings.ToLower(firstName + "." + lastName)

	digitsLength := mathrand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		local += string(digits[mathrand.Intn(len(digits))])
	}

	return local + "@" + domainName
}

func GenerateRandomWorker(companyID uuid.UUID, password string, emailDomainName string) (*domain.User, error) {
	firstName, lastName := GenerateRandomName()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		CompanyID:    companyID,
		Email:        GenerateEmailFromName(firstName, lastName, emailDomainName),
		PasswordHash: string(passwordHash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         domain.RoleWorker,
		Position:     positions[mathrand.Intn(len(positions))],
	}

	return user, nil
}

var letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// GenerateRandomPassword draws from crypto/rand since the result is mailed
// to new users as their initial password.
func GenerateRandomPassword(length int) (string, error) {
	password := make([]byte, length)
	limit := big.NewInt(int64(len(letters)))
	for i := range password {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		password[i] = letters[n.Int64()]
	}
	return string(password), nil
}

// GenerateRandomApplicableDays shuffles the week with Fisher-Yates and keeps
// a random non-empty prefix.
func GenerateRandomApplicableDays() []int32 {
	days := []int32{1, 2, 3, 4, 5, 6, 7}

	for i := len(days) - 1; i > 0; i-- {
		j := mathrand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := mathrand.Intn(len(days)) + 1

	return days[:n]
}

// GenerateRandomShiftTemplates splits the day into n back to back templates.
func GenerateRandomShiftTemplates(companyID uuid.UUID, n int) []*domain.ShiftTemplate {
	if n < 1 {
		n = 1
	}
	if n > 24 {
		n = 24
	}

	hourPerShift := 24 / n
	templates := make([]*domain.ShiftTemplate, n)
	for i := range templates {
		startHour := i * hourPerShift
		endHour := startHour + hourPerShift
		endTime := fmt.Sprintf("%02d:00", endHour)
		if endHour == 24 {
			endTime = "23:59"
		}

		templates[i] = &domain.ShiftTemplate{
			CompanyID: companyID,
			Name:      fmt.Sprintf("Shift %d", i+1),
			Position:  positions[mathrand.Intn(len(positions))],
			StartTime: fmt.Sprintf("%02d:00", startHour),
			EndTime:   endTime,
			Days:      GenerateRandomApplicableDays(),
		}
	}

	return templates
}
