package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	notify "github.com/bitly/go-notify"

	"github.com/bytearena/botnav/internal/config"
	"github.com/bytearena/botnav/internal/obslog"
	"github.com/bytearena/botnav/internal/vector"
	"github.com/bytearena/botnav/level"
	"github.com/bytearena/botnav/navmesh"
)

// sampleLevel is a minimal hard-coded level used until a real level-file
// loader (external collaborator, per the configuration snapshot contract)
// is wired in.
func sampleLevel() level.Spec {
	return level.Spec{
		WorldBounds: navmesh.MakeRect(
			vector.MakeVector2(0, 0),
			vector.MakeVector2(400, 400),
		),
		Teams: []level.Team{
			{SpawnPoints: []level.Point{vector.MakeVector2(20, 20)}},
		},
	}
}

func main() {
	levelDir := flag.String("level-dir", "./levels", "filesystem root level files are loaded from")
	robotDir := flag.String("robot-dir", "./bots", "filesystem root bot scripts are loaded from")
	luaDir := flag.String("lua-dir", "./scripts/lua", "directory holding the bot helper script")
	tps := flag.Int("tps", 30, "server ticks per second")
	flag.Parse()

	cfg := config.Default()
	cfg.LevelDir = *levelDir
	cfg.RobotDir = *robotDir
	cfg.LuaDir = *luaDir
	cfg.TicksPerSecond = *tps

	lvl, err := level.Load(sampleLevel(), cfg)
	if err != nil {
		obslog.Fatal(err, "failed to load level")
	}

	for _, rejected := range lvl.Rejected {
		obslog.Info("arena-server", "bot rejected: "+rejected.Spec.ScriptPath, obslog.Context{
			"error": rejected.Err.Error(),
		})
	}

	stop := make(chan interface{})
	notify.Start("app:stopticking", stop)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		notify.Post("app:stopticking", nil)
	}()

	tickDt := time.Second / time.Duration(cfg.TicksPerSecond)
	ticker := time.NewTicker(tickDt)
	defer ticker.Stop()

	var nowMs float64
	dtMs := float64(tickDt) / float64(time.Millisecond)

	for {
		select {
		case <-stop:
			obslog.Info("arena-server", "shutting down", nil)
			return
		case <-ticker.C:
			nowMs += dtMs
			lvl.Tick(nowMs, dtMs)
		}
	}
}
