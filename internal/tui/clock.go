package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// clockMsg carries a scheduled callback onto the update loop.
type clockMsg struct {
	fire func()
}

// ProgramClock delivers periodic callbacks through a Bubble Tea program so
// they run on the same goroutine as key handling.
type ProgramClock struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach sets the program that receives clock ticks.
func (c *ProgramClock) Attach(p *tea.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.program = p
}

// Every sends fn to the program every d until cancel is called.
func (c *ProgramClock) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.send(clockMsg{fire: fn})
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(stop)
		})
	}
}

func (c *ProgramClock) send(msg tea.Msg) {
	c.mu.Lock()
	p := c.program
	c.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
