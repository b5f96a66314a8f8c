package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	Logout(ctx context.Context) error
	Claims(ctx context.Context) error
	Claim(ctx context.Context, args []string) error
	Images(ctx context.Context, args []string) error
	NewClaim(ctx context.Context) error
	SetStatus(ctx context.Context, args []string) error
	DeleteClaim(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, exit"
	helpOperator  = "Available commands: me, claims, claim <id>, images <claimId>, newclaim, status <id> <STATUS>, " +
		"delete <id>, stats, upload <claimId> <file>, logout, exit"
)

// runREPL reads commands from scanner until EOF, "exit" or "quit". Handler
// errors are printed and the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("kn %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpOperator)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "me", "logout", "claims", "l", "claim", "images", "newclaim", "status", "delete", "stats", "upload":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			err = dispatch(ctx, a, cmd, args)

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "me":
		return a.Me(ctx)
	case "logout":
		return a.Logout(ctx)
	case "claims", "l":
		return a.Claims(ctx)
	case "claim":
		return a.Claim(ctx, args)
	case "images":
		return a.Images(ctx, args)
	case "newclaim":
		return a.NewClaim(ctx)
	case "status":
		return a.SetStatus(ctx, args)
	case "delete":
		return a.DeleteClaim(ctx, args)
	case "stats":
		return a.Stats(ctx)
	case "upload":
		return a.Upload(ctx, args)
	}
	return nil
}
