// dcvfsls lists a path within a dcvfs mount tree built from a ROM
// image on disk. It's a minimal demo of the façade, not a full shell.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/dcvfs/dcvfs"
)

func main() {
	romPath := flag.String("rom", "", "path to a 2MiB ROM image to mount at /rom")
	flag.Parse()
	if len(flag.Args()) != 1 {
		log.Fatal("Usage:\n  dcvfsls [-rom FILE] PATH")
	}
	path := flag.Arg(0)

	cfg := dcvfs.Config{}
	if *romPath != "" {
		data, err := os.ReadFile(*romPath)
		if err != nil {
			log.Fatalf("reading %s: %v", *romPath, err)
		}
		if len(data) != dcvfs.RomSize {
			log.Fatalf("%s is %d bytes, want exactly %d", *romPath, len(data), dcvfs.RomSize)
		}
		cfg.ROM = data
	}

	engine, err := dcvfs.NewEngine(cfg)
	if err != nil {
		log.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	session := engine.OpenFS()
	defer session.CloseFS()

	info, errno := session.Stat(path)
	if errno != 0 {
		log.Fatalf("stat %s: %v", path, errno)
	}
	if !info.IsDir {
		log.Printf("%s: %d bytes", path, info.Size)
		return
	}

	h, errno := session.Opendir(path)
	if errno != 0 {
		log.Fatalf("opendir %s: %v", path, errno)
	}
	defer session.Closedir(h)

	for {
		de, ok, errno := session.Readdir(h)
		if errno != 0 {
			log.Fatalf("readdir %s: %v", path, errno)
		}
		if !ok {
			break
		}
		log.Println(de.Name)
	}
}
