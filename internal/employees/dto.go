package employees

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
	"github.com/stridewear/stridewear-backend/pkg/enums"
)

// EmployeeDTO is the API shape of a staff or shipper account.
type EmployeeDTO struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Phone     *string            `json:"phone,omitempty"`
	Role      enums.EmployeeRole `json:"role"`
	CreatedAt time.Time          `json:"created_at"`
}

// AuthResult bundles the minted token with the employee it belongs to.
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	Employee    EmployeeDTO `json:"employee"`
}

func toDTO(employee *models.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        employee.ID,
		Name:      employee.Name,
		Email:     employee.Email,
		Phone:     employee.Phone,
		Role:      employee.Role,
		CreatedAt: employee.CreatedAt,
	}
}
