// Package win32 injects input and power requests through user32 and kernel32.
package win32
