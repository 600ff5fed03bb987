package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lezionipari/coursecore/internal/acl"
	"github.com/lezionipari/coursecore/internal/auth"
	"github.com/lezionipari/coursecore/internal/config"
	"github.com/lezionipari/coursecore/internal/content"
	"github.com/lezionipari/coursecore/internal/descriptor"
	"github.com/lezionipari/coursecore/internal/docstore"
	"github.com/lezionipari/coursecore/internal/platform/logger"
	"github.com/lezionipari/coursecore/internal/users"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	reset := flag.Bool("reset", false, "re-initialize the descriptor document")
	noBackup := flag.Bool("no-backup", false, "skip the descriptor snapshot when resetting")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal("create data dir", "error", err)
	}

	desc, err := descriptor.New(docstore.NewFile(cfg.DescriptorPath()), cfg.BackupDir(), log)
	if err != nil {
		log.Fatal("open descriptor store", "error", err)
	}
	if *reset {
		if err := desc.Reset(!*noBackup); err != nil {
			log.Fatal("reset descriptor", "error", err)
		}
		log.Info("descriptor re-initialized", "backup", !*noBackup)
	}

	contentStore, err := content.New(cfg.CoursesDir(), desc, log)
	if err != nil {
		log.Fatal("open content store", "error", err)
	}

	aclStore, err := acl.New(docstore.NewFile(cfg.ACLPath()), log)
	if err != nil {
		log.Fatal("open acl store", "error", err)
	}
	_ = aclStore

	userStore, err := users.Open(cfg.UsersDB, log)
	if err != nil {
		log.Fatal("open users db", "error", err)
	}
	_ = userStore

	tokens := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenTTL)*time.Second, log)
	_ = tokens

	courses, err := contentStore.ListCourses()
	if err != nil {
		log.Fatal("list courses", "error", err)
	}
	log.Info("content repository ready", "data_dir", cfg.DataDir, "courses", len(courses))
}
