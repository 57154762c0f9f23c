//go:build windows

package win32

import (
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procSendInput        = user32.NewProc("SendInput")
	procGetCursorPos     = user32.NewProc("GetCursorPos")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount     = kernel32.NewProc("GetTickCount")
	procSetThreadExecSt  = kernel32.NewProc("SetThreadExecutionState")
)

// Win32 constants
const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseeventfMove = 0x0001
	keyeventfKeyUp  = 0x0002

	// VK_F15 is not bound by any common application
	vkF15 = 0x7E

	smCxScreen = 0
	smCyScreen = 1

	esContinuous      = 0x80000000
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
)

type point struct {
	X int32
	Y int32
}

type mouseInput struct {
	Dx        int32
	Dy        int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// mouseEvent and keyEvent mirror INPUT; KEYBDINPUT is 8 bytes shorter than
// MOUSEINPUT on both 32 and 64 bit, hence the padding.
type mouseEvent struct {
	Type uint32
	Mi   mouseInput
}

type keyEvent struct {
	Type uint32
	Ki   keybdInput
	_    [8]byte
}

type lastInputInfo struct {
	Size uint32
	Time uint32
}

// Input implements keepalive.PointerDriver and keepalive.KeyTapper with SendInput
type Input struct{}

func NewInput() (*Input, error) {
	if err := procSendInput.Find(); err != nil {
		return nil, errors.Wrap(err, "SendInput unavailable")
	}
	return &Input{}, nil
}

func (i *Input) Position() (int, int, error) {
	var p point
	ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	if ret == 0 {
		return 0, 0, errors.Wrap(err, "GetCursorPos")
	}
	return int(p.X), int(p.Y), nil
}

func (i *Input) ScreenSize() (int, int, error) {
	w, _, _ := procGetSystemMetrics.Call(smCxScreen)
	h, _, _ := procGetSystemMetrics.Call(smCyScreen)
	if w == 0 || h == 0 {
		return 0, 0, errors.New("GetSystemMetrics returned an empty screen")
	}
	return int(w), int(h), nil
}

func (i *Input) MoveRelative(dx, dy int) error {
	ev := mouseEvent{
		Type: inputMouse,
		Mi: mouseInput{
			Dx:    int32(dx),
			Dy:    int32(dy),
			Flags: mouseeventfMove,
		},
	}
	return sendInput(unsafe.Pointer(&ev), 1)
}

func (i *Input) TapKeepaliveKey() error {
	events := [2]keyEvent{
		{Type: inputKeyboard, Ki: keybdInput{Vk: vkF15}},
		{Type: inputKeyboard, Ki: keybdInput{Vk: vkF15, Flags: keyeventfKeyUp}},
	}
	return sendInput(unsafe.Pointer(&events[0]), len(events))
}

func (i *Input) Close() error {
	return nil
}

func sendInput(events unsafe.Pointer, n int) error {
	size := unsafe.Sizeof(mouseEvent{})
	sent, _, err := procSendInput.Call(uintptr(n), uintptr(events), size)
	if int(sent) != n {
		return errors.Wrap(err, "SendInput")
	}
	return nil
}

// ErrClosed is returned by Hint after Close
var ErrClosed = errors.New("execution state closed")

// ExecutionState implements keepalive.Hinter with SetThreadExecutionState.
// The flag belongs to an OS thread, so every call is made from one
// goroutine locked to its thread for the lifetime of the hinter.
type ExecutionState struct {
	requests chan stateRequest
	done     chan struct{}
	once     sync.Once

	set func(flags uintptr) error
}

type stateRequest struct {
	flags uintptr
	reply chan error
}

func NewExecutionState() (*ExecutionState, error) {
	if err := procSetThreadExecSt.Find(); err != nil {
		return nil, errors.Wrap(err, "SetThreadExecutionState unavailable")
	}
	return newExecutionState(setThreadExecutionState), nil
}

func newExecutionState(set func(flags uintptr) error) *ExecutionState {
	e := &ExecutionState{
		requests: make(chan stateRequest),
		done:     make(chan struct{}),
		set:      set,
	}
	go e.serve()
	return e
}

// serve owns the locked thread. It never unlocks, so the thread is
// discarded together with its execution state when serve returns.
func (e *ExecutionState) serve() {
	runtime.LockOSThread()
	for {
		select {
		case req := <-e.requests:
			req.reply <- e.set(req.flags)
		case <-e.done:
			return
		}
	}
}

func (e *ExecutionState) call(flags uintptr) error {
	req := stateRequest{flags: flags, reply: make(chan error, 1)}
	select {
	case e.requests <- req:
		return <-req.reply
	case <-e.done:
		return ErrClosed
	}
}

func (e *ExecutionState) Hint() error {
	return e.call(esContinuous | esSystemRequired | esDisplayRequired)
}

// Close clears the continuous request and stops the owning thread
func (e *ExecutionState) Close() error {
	err := ErrClosed
	e.once.Do(func() {
		err = e.call(esContinuous)
		close(e.done)
	})
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

func setThreadExecutionState(flags uintptr) error {
	prev, _, err := procSetThreadExecSt.Call(flags)
	if prev == 0 {
		return errors.Wrap(err, "SetThreadExecutionState")
	}
	return nil
}

// IdleTime returns the time since the last user input
func IdleTime() (time.Duration, error) {
	info := lastInputInfo{Size: uint32(unsafe.Sizeof(lastInputInfo{}))}
	ret, _, err := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return 0, errors.Wrap(err, "GetLastInputInfo")
	}
	now, _, _ := procGetTickCount.Call()
	return time.Duration(uint32(now)-info.Time) * time.Millisecond, nil
}
