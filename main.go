package main

import (
	"flag"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"GoBA/internal/apu"
	"GoBA/internal/bus"
	"GoBA/internal/cartridge"
	"GoBA/internal/cpu"
	"GoBA/internal/dma"
	"GoBA/internal/emulator"
	"GoBA/internal/interrupt"
	"GoBA/internal/io"
	"GoBA/internal/joypad"
	"GoBA/internal/memory"
	"GoBA/internal/ppu"
	"GoBA/internal/rom"
	"GoBA/internal/timer"
	"GoBA/util/dbg"
)

func main() {
	fp := flag.String("rom", "", "Path to ROM file")
	flag.Parse()
	if *fp == "" {
		log.Fatal("ROM file path is required")
	}

	romData, err := os.ReadFile(*fp)
	if err != nil {
		log.Fatal(err)
	}
	header, err := rom.Parse(romData)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %q (%s, rev %d)", header.Title, header.GameCode, header.Version)

	cart := cartridge.NewCartridge(romData)
	savePath := savePathFor(*fp)
	if saveData, err := os.ReadFile(savePath); err == nil {
		cart.LoadSave(saveData)
	}

	bios := memory.NewBIOS()
	ewram := memory.NewEWRAM()
	iwram := memory.NewIWRAM()
	gpu := ppu.NewPPU()
	ioRegs := io.NewRegs()
	dmaController := dma.NewController()
	timers := timer.NewController()
	sound := apu.NewAPU()
	keypad := joypad.NewJoypad()
	irq := interrupt.NewController()

	b := bus.NewBus(bios, ewram, iwram, gpu, cart, ioRegs, dmaController, timers, sound, keypad, irq)
	core := cpu.NewCPU(b)
	core.Reset()

	machine := emulator.New(core, b)
	machine.SetAutoSave(func(data []byte) error {
		return os.WriteFile(savePath, data, 0o644)
	})

	frameCount := 0
	firstFrameSaved := false
	lastTime := time.Now()

	for {
		machine.RunFrame()
		frameCount++

		if gpu.IsFrameReady() {
			gpu.ResetFrameReady()
			if !firstFrameSaved {
				saveFrame(gpu, "first_frame.png")
				firstFrameSaved = true
			}
		}

		if time.Since(lastTime) >= time.Second {
			dbg.Printf("FPS: %d\n", frameCount)
			frameCount = 0
			lastTime = time.Now()
		}

		runtime.Gosched()
	}
}

// savePathFor derives the .sav filename for a ROM path, matching
// spec.md §6's "ROM's path with its extension replaced by .sav".
func savePathFor(romPath string) string {
	ext := filepath.Ext(romPath)
	return strings.TrimSuffix(romPath, ext) + ".sav"
}

func saveFrame(p *ppu.PPU, filename string) {
	file, err := os.Create(filename)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	if err := png.Encode(file, p.Frame); err != nil {
		log.Fatal(err)
	}
	log.Printf("Saved first frame to %s", filename)
}
