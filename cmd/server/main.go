// File: cmd/server/main.go
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/lguibr/gridwar/board"
	"github.com/lguibr/gridwar/boardfile"
	"github.com/lguibr/gridwar/config"
	"github.com/lguibr/gridwar/game"
	"github.com/lguibr/gridwar/server"
)

const defaultPort = "8080"

// defaultBoard builds a plain 25x25 open arena with no walls, used
// when the BOARD_FILE environment variable is not set.
func defaultBoard(cfg config.Config) (*board.Board, []game.Entity) {
	const size = 25
	grid := make([]board.Kind, size*size)
	spawns := make([]board.Point, 0, cfg.SpawnMaxCount)
	for i := 0; i < cfg.SpawnMaxCount && i < size; i++ {
		spawns = append(spawns, board.Point{X: i, Y: 0})
	}
	return board.New(size, size, grid, spawns, cfg.SpawnMaxCount), nil
}

func main() {
	cfg := config.Default()
	fmt.Println("Configuration loaded (using defaults).")

	var b *board.Board
	var entities []game.Entity
	if path := os.Getenv("BOARD_FILE"); path != "" {
		loaded, loadedEntities, err := boardfile.Load(path)
		if err != nil {
			fmt.Println("Failed to load board file:", err)
			os.Exit(1)
		}
		b, entities = loaded, loadedEntities
		fmt.Printf("Board loaded from %s (%dx%d, %d spawns, %d entities)\n",
			path, b.Width(), b.Height(), len(b.Spawns()), len(entities))
	} else {
		b, entities = defaultBoard(cfg)
		fmt.Printf("No BOARD_FILE set, using default %dx%d arena.\n", b.Width(), b.Height())
	}

	listener := server.NewListener(b, cfg, entities)
	go listener.RunTicker()

	http.HandleFunc("/health-check/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	http.Handle("/subscribe", listener.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
		fmt.Printf("PORT environment variable not set, defaulting to %s\n", port)
	}

	listenAddr := ":" + port
	fmt.Printf("Server starting on address %s\n", listenAddr)
	if err := http.ListenAndServe(listenAddr, nil); err != nil {
		fmt.Println("Server stopped:", err)
		listener.Stop()
	}
}
