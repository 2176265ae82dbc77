// Package gateway bridges the message bus to the command executor.
// Frontends publish command frames to the bus; the gateway enqueues
// them onto the world's event queue so every command runs on the
// simulation goroutine.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/emberfallmud/emberfall/internal/commands"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/store"
)

// Bus subjects the gateway owns.
const (
	// SubjectCommands is where frontends publish player input.
	SubjectCommands = "game.commands"
	// SubjectAuth is where frontends publish login attempts. The reply
	// goes to auth.<sid>.
	SubjectAuth = "game.auth"
)

// CommandFrame is one player command as published by a frontend.
type CommandFrame struct {
	Player    string `json:"player"`
	Sid       string `json:"sid"`
	AccountId string `json:"account_id,omitempty"`
	Line      string `json:"line"`
}

// Bus is the transport half the gateway consumes. Satisfied by
// messaging.NatsServer.
type Bus interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
	Publish(subject string, data []byte) error
}

// Authenticator checks account credentials. Satisfied by store.Store.
type Authenticator interface {
	Authenticate(id, password string) (*store.Account, error)
}

type Gateway struct {
	World    *game.World
	Ex       *commands.Executor
	Bus      Bus
	Notify   commands.Notifier
	Accounts Authenticator
}

func NewGateway(w *game.World, ex *commands.Executor, bus Bus, notify commands.Notifier, accounts Authenticator) *Gateway {
	return &Gateway{World: w, Ex: ex, Bus: bus, Notify: notify, Accounts: accounts}
}

// Start subscribes to the gateway subjects and blocks until the
// context is cancelled. The bus may still be coming up when we start,
// so the subscriptions are retried.
func (g *Gateway) Start(ctx context.Context) error {
	subjects := map[string]func([]byte){
		SubjectCommands: g.handle,
		SubjectAuth:     g.handleAuth,
	}

	var unsubs []func()
	defer func() {
		for _, u := range unsubs {
			u()
		}
	}()

	for subject, handler := range subjects {
		for {
			unsub, err := g.Bus.Subscribe(subject, handler)
			if err == nil {
				unsubs = append(unsubs, unsub)
				break
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(250 * time.Millisecond):
			}
		}
	}

	slog.Info("command gateway listening", "subjects", []string{SubjectCommands, SubjectAuth})
	<-ctx.Done()
	return nil
}

// AuthFrame is one login attempt published by a frontend.
type AuthFrame struct {
	Account  string `json:"account"`
	Password string `json:"password"`
	Sid      string `json:"sid"`
}

// AuthResult is the reply pushed to auth.<sid>.
type AuthResult struct {
	Ok      bool   `json:"ok"`
	Account string `json:"account,omitempty"`
	Admin   bool   `json:"admin,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (g *Gateway) handleAuth(data []byte) {
	var frame AuthFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		slog.Warn("dropping malformed auth frame", "err", err)
		return
	}
	if frame.Sid == "" {
		slog.Warn("dropping auth frame without sid")
		return
	}

	result := AuthResult{}
	acct, err := g.Accounts.Authenticate(frame.Account, frame.Password)
	if err != nil {
		result.Error = "Invalid account name or password."
		slog.Info("authentication failed", "account", frame.Account)
	} else {
		result.Ok = true
		result.Account = acct.Id
		result.Admin = acct.Admin
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := g.Bus.Publish("auth."+frame.Sid, payload); err != nil {
		slog.Error("auth reply failed", "sid", frame.Sid, "err", err)
	}
}

// handle runs on the bus delivery goroutine. It only parses and
// enqueues; the executor itself runs inside the simulation pass.
func (g *Gateway) handle(data []byte) {
	var frame CommandFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		slog.Warn("dropping malformed command frame", "err", err)
		return
	}
	if frame.Player == "" {
		slog.Warn("dropping command frame without player")
		return
	}

	g.World.Enqueue("command", func() {
		resp, err := g.Ex.Execute(frame.Player, frame.Line, frame.Sid, frame.AccountId)
		if err != nil {
			slog.Error("command failed", "player", frame.Player, "err", err)
			g.send(frame.Player, messaging.Envelope{
				Type: messaging.EventSystemError,
				Text: "Something went wrong handling your command.",
			})
			return
		}
		g.send(frame.Player, messaging.Envelope{
			Type:    messaging.EventCommandResponse,
			Payload: resp,
		})
	})
}

func (g *Gateway) send(playerName string, env messaging.Envelope) {
	if g.Notify == nil {
		return
	}
	if err := g.Notify.Send(playerName, env); err != nil {
		slog.Error("send failed", "player", playerName, "err", err)
	}
}
