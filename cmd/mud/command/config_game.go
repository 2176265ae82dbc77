package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// GameConfig carries operator-facing knobs: which accounts are
// administrators and which accounts to seed into the database on boot.
type GameConfig struct {
	AdminAccounts []string            `json:"admin_accounts"`
	SeedAccounts  []SeedAccountConfig `json:"seed_accounts"`
}

// SeedAccountConfig creates an account at startup if it does not
// already exist. Existing accounts keep their stored password.
type SeedAccountConfig struct {
	Id       string `json:"id"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

func (g *GameConfig) validate() error {
	el := errors.NewErrorList()

	for i, a := range g.SeedAccounts {
		if a.Id == "" {
			el.Add(fmt.Errorf("seed account %d: id is required", i))
		}
		if a.Password == "" {
			el.Add(fmt.Errorf("seed account %d: password is required", i))
		}
	}

	return el.Err()
}
