package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridewear/stridewear-backend/pkg/db/models"
)

// CustomerDTO is the API shape of a customer profile.
type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult bundles the minted token with the profile it belongs to.
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	Customer    CustomerDTO `json:"customer"`
}

// AddressDTO is the API shape of a shipping address.
type AddressDTO struct {
	ID         uuid.UUID `json:"id"`
	Receiver   string    `json:"receiver"`
	Phone      string    `json:"phone"`
	ProvinceID int       `json:"province_id"`
	DistrictID int       `json:"district_id"`
	WardCode   string    `json:"ward_code"`
	Detail     string    `json:"detail"`
	IsDefault  bool      `json:"is_default"`
}

func toCustomerDTO(customer *models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		AvatarURL: customer.AvatarURL,
		CreatedAt: customer.CreatedAt,
	}
}

func toAddressDTO(address *models.CustomerAddress) AddressDTO {
	return AddressDTO{
		ID:         address.ID,
		Receiver:   address.Receiver,
		Phone:      address.Phone,
		ProvinceID: address.ProvinceID,
		DistrictID: address.DistrictID,
		WardCode:   address.WardCode,
		Detail:     address.Detail,
		IsDefault:  address.IsDefault,
	}
}

func toAddressDTOs(rows []models.CustomerAddress) []AddressDTO {
	out := make([]AddressDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toAddressDTO(&rows[i]))
	}
	return out
}
