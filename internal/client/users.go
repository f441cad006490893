package client

import (
	"context"
	"fmt"
	"net/http"
)

// User is the subset of a user record the affiliation engine needs.
type User struct {
	ID               string       `json:"id"`
	Username         string       `json:"username"`
	ExternalSystemID string       `json:"externalSystemId,omitempty"`
	Barcode          string       `json:"barcode,omitempty"`
	Personal         UserPersonal `json:"personal,omitempty"`
}

// UserPersonal carries the contact attributes mirrored into affiliation
// events.
type UserPersonal struct {
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	MobilePhone string `json:"mobilePhone,omitempty"`
}

type userCollection struct {
	Users        []User `json:"users"`
	TotalRecords int    `json:"totalRecords"`
}

// Users reads user records from whichever tenant the context is scoped to.
type Users struct {
	gateway  *Gateway
	pageSize int
}

func NewUsers(gateway *Gateway) *Users {
	return &Users{gateway: gateway, pageSize: 1000}
}

// GetAll fetches the tenant's full user roster, paging until exhausted.
func (c *Users) GetAll(ctx context.Context) ([]User, error) {
	var out []User
	for offset := 0; ; offset += c.pageSize {
		var page userCollection
		path := fmt.Sprintf("/users?query=cql.allRecords%%3D1&offset=%d&limit=%d", offset, c.pageSize)
		if err := c.gateway.Do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Users...)
		if len(page.Users) < c.pageSize || len(out) >= page.TotalRecords {
			return out, nil
		}
	}
}
