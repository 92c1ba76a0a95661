//go:build !windows

// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package main

import (
	"os"

	"golang.org/x/term"
)

type ConsoleState struct {
	state term.State
}

// SetRawConsole puts stdin into raw mode so guest programs see every
// keystroke unbuffered and unechoed.
func SetRawConsole() (*ConsoleState, error) {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}
	return &ConsoleState{*oldState}, nil
}

func RestoreConsole(st *ConsoleState) error {
	return term.Restore(int(os.Stdin.Fd()), &st.state)
}

func ConsoleRead(buf []byte) (int, error) {
	return os.Stdin.Read(buf)
}
