package commands

import (
	"time"

	"github.com/emberfallmud/emberfall/internal/game"
)

// HandlerFunc runs one verb. Returning a *UserError sends its message
// to the player; any other error is logged and reported generically.
type HandlerFunc func(c *Context) error

// Context carries everything a verb handler needs for one dispatch.
type Context struct {
	Ex     *Executor
	World  *game.World
	Player *game.Player
	Room   *game.Room
	Args   []string
	Verb   string
	Now    time.Time

	// LeaveMessage is picked up by the executor when a verb ends the
	// session.
	LeaveMessage string
}

// Registration binds a verb name and its aliases to a handler.
// Admin-only verbs are silently non-matching for non-admin players.
type Registration struct {
	Name    string
	Aliases []string
	Admin   bool
	Handler HandlerFunc
}

func (e *Executor) register(r *Registration) {
	e.registry[r.Name] = r
	for _, a := range r.Aliases {
		e.registry[a] = r
	}
}

func (e *Executor) lookup(verb string) *Registration {
	return e.registry[verb]
}

func (e *Executor) registerAll() {
	e.register(&Registration{Name: "look", Aliases: []string{"l"}, Handler: handleLook})
	e.register(&Registration{Name: "help", Handler: handleHelp})
	e.register(&Registration{Name: "say", Aliases: []string{"'"}, Handler: handleSay})
	e.register(&Registration{Name: "who", Aliases: []string{"online"}, Handler: handleWho})
	e.register(&Registration{Name: "go", Aliases: []string{"move"}, Handler: handleGo})
	for _, d := range directions {
		e.register(&Registration{Name: d.name, Aliases: d.aliases, Handler: handleDirection})
	}

	e.register(&Registration{Name: "attack", Aliases: []string{"kill", "att"}, Handler: handleAttack})
	e.register(&Registration{Name: "stance", Handler: handleStance})
	for cmd := range postureMap {
		e.register(&Registration{Name: cmd, Handler: handlePosture})
	}

	e.register(&Registration{Name: "get", Aliases: []string{"take"}, Handler: handleGet})
	e.register(&Registration{Name: "drop", Aliases: []string{"discard"}, Handler: handleDrop})
	e.register(&Registration{Name: "inventory", Aliases: []string{"inv", "i"}, Handler: handleInventory})
	e.register(&Registration{Name: "wealth", Handler: handleWealth})

	e.register(&Registration{Name: "search", Handler: handleSearch})
	e.register(&Registration{Name: "skin", Handler: handleSkin})

	e.register(&Registration{Name: "give", Handler: handleGive})
	e.register(&Registration{Name: "exchange", Aliases: []string{"trade"}, Handler: handleExchange})
	e.register(&Registration{Name: "accept", Handler: handleAccept})
	e.register(&Registration{Name: "decline", Handler: handleDecline})
	e.register(&Registration{Name: "cancel", Handler: handleCancel})
	e.register(&Registration{Name: "confirm", Handler: handleConfirm})

	e.register(&Registration{Name: "group", Handler: handleGroup})
	e.register(&Registration{Name: "hold", Handler: handleHold})
	e.register(&Registration{Name: "join", Handler: handleJoin})
	e.register(&Registration{Name: "leave", Handler: handleLeave})
	e.register(&Registration{Name: "disband", Handler: handleDisband})
	e.register(&Registration{Name: "band", Handler: handleBand})
	e.register(&Registration{Name: "bt", Handler: handleBandTalk})

	e.register(&Registration{Name: "experience", Aliases: []string{"exp"}, Handler: handleExperience})
	e.register(&Registration{Name: "checkin", Handler: handleCheckin})
	e.register(&Registration{Name: "train", Handler: handleTrain})
	e.register(&Registration{Name: "list", Handler: handleList})
	e.register(&Registration{Name: "check", Handler: handleCheck})
	e.register(&Registration{Name: "levelup", Aliases: []string{"level"}, Handler: handleLevelup})
	e.register(&Registration{Name: "done", Handler: handleDone})

	e.register(&Registration{Name: "flag", Aliases: []string{"flags"}, Handler: handleFlag})
	e.register(&Registration{Name: "save", Handler: handleSave})
	e.register(&Registration{Name: "quit", Aliases: []string{"logout"}, Handler: handleQuit})

	e.register(&Registration{Name: "teleport", Admin: true, Handler: handleTeleport})
	e.register(&Registration{Name: "freeze", Admin: true, Handler: handleFreeze})
	e.register(&Registration{Name: "restore", Admin: true, Handler: handleRestore})
	e.register(&Registration{Name: "wiz", Admin: true, Handler: handleWiz})
}
