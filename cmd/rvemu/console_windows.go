//go:build windows

// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package main

import (
	"io"
	"os"

	"golang.org/x/sys/windows"
)

type ConsoleState struct {
	modeStdin uint32
}

func SetRawConsole() (*ConsoleState, error) {
	var stIn uint32

	stdinFd := os.Stdin.Fd()

	if err := windows.GetConsoleMode(windows.Handle(stdinFd), &stIn); err != nil {
		return nil, err
	}
	raw := stIn &^ (windows.ENABLE_ECHO_INPUT | windows.ENABLE_PROCESSED_INPUT | windows.ENABLE_LINE_INPUT | windows.ENABLE_PROCESSED_OUTPUT)
	raw |= windows.ENABLE_VIRTUAL_TERMINAL_INPUT
	if err := windows.SetConsoleMode(windows.Handle(stdinFd), raw); err != nil {
		return nil, err
	}

	return &ConsoleState{stIn}, nil
}

func RestoreConsole(st *ConsoleState) error {
	stdinFd := os.Stdin.Fd()
	return windows.SetConsoleMode(windows.Handle(stdinFd), st.modeStdin)
}

func ConsoleRead(buf []byte) (int, error) {
	n, err := os.Stdin.Read(buf)
	if err == io.EOF {
		// map ^Z to SUB so the guest sees something instead of EOF
		buf[0] = 26
		return 1, nil
	}
	return n, err
}
