package domain

import "time"

// SubjectType differentiates employee vs customer identities.
type SubjectType string

const (
	SubjectTypeEmployee SubjectType = "EMPLOYEE"
	SubjectTypeCustomer SubjectType = "CUSTOMER"
)

// SubjectRef is the tagged pair identifying an authenticated subject.
type SubjectRef struct {
	Type SubjectType
	ID   string
}

// EmployeeRole enumerates internal operator roles.
type EmployeeRole string

const (
	EmployeeRoleStaff   EmployeeRole = "STAFF"
	EmployeeRoleManager EmployeeRole = "MANAGER"
	EmployeeRoleAdmin   EmployeeRole = "ADMIN"
)

// AccountStatus represents lifecycle states for any credentialed account.
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "ACTIVE"
	AccountStatusDeactivated AccountStatus = "DEACTIVATED"
)

// Employee models an internal HR-platform operator.
// Phone is PII and is stored field-encrypted at rest.
type Employee struct {
	ID           string
	Name         string
	Email        string
	Phone        *string
	PasswordHash string
	Role         EmployeeRole
	Status       AccountStatus
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Customer models an external account holder (client-company contact).
// Phone is PII and is stored field-encrypted at rest.
type Customer struct {
	ID             string
	Name           string
	Email          string
	Phone          *string
	PasswordHash   string
	Status         AccountStatus
	LastActivityAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
