package model

import (
	"time"

	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// User is the minimal identity record the core needs: responsible-party
// references are resolved against it before any write.
type User struct {
	ID        types.UserID `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	CreatedAt time.Time    `json:"created_at"`
}
