// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package baremetal

// Strlen counts the bytes before the first NUL. The caller is expected
// to pass a NUL-terminated buffer; an unterminated slice yields len(s),
// the scan cannot leave the slice.
func Strlen(s []byte) int {
	i := 0
	for i < len(s) && s[i] != 0 {
		i++
	}
	return i
}

// Strrev reverses s in place up to its NUL terminator. The division
// truncates, so the middle byte of an odd-length string stays put, and
// applying Strrev twice restores the original bytes.
func Strrev(s []byte) {
	sz := Strlen(s)
	for i := 0; i < sz/2; i++ {
		s[i], s[sz-i-1] = s[sz-i-1], s[i]
	}
}
