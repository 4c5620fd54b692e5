// Command elfinspect is a small downstream consumer of the elfcore object
// model: it parses an ELF file, lists its sections, optionally resolves and
// disassembles a named function, and can re-run itself whenever the target
// file changes on disk.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"

	"github.com/binlens/elfcore/internal/chain"
	"github.com/binlens/elfcore/internal/chunk"
	"github.com/binlens/elfcore/internal/elf"
	"github.com/binlens/elfcore/internal/region"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		funcName    = flag.String("func", "", "resolve and disassemble this function")
		watch       = flag.Bool("watch", false, "re-inspect whenever the target file changes on disk")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("elfinspect %s (%s), object model %s\n", version, commit, elf.ModelVersion)

		return
	}

	args := flag.Args()
	if len(args) != 1 {
		log.Fatalf("usage: elfinspect [-func NAME] [-watch] <path>")
	}

	path := args[0]

	if err := inspect(path, *funcName); err != nil {
		log.Fatalf("elfinspect: %v", err)
	}

	if !*watch {
		return
	}

	if err := watchAndReinspect(path, *funcName); err != nil {
		log.Fatalf("elfinspect: %v", err)
	}
}

func inspect(path, funcName string) error {
	r, err := region.FromFile(path)
	if err != nil {
		return err
	}

	e, err := elf.Parse(chunk.New([]byte("elf64")), r)
	if err != nil {
		return err
	}
	defer e.Destroy()

	fmt.Printf("%s: %d sections, %d program headers\n", path, len(e.Sections()), len(e.ProgramHeaders()))

	for _, s := range e.Sections() {
		name, _ := e.GetSectionName(s)
		if name == "" {
			continue
		}

		tag := ""
		if t := e.GetSectionTag(s); t != 0 {
			tag = fmt.Sprintf(" dt=%d", t)
		}

		fmt.Printf("  %-16s addr=0x%08x size=0x%-8x%s\n", name, s.Addr, s.Size, tag)
	}

	if funcName == "" {
		return nil
	}

	return disassembleFunction(e, funcName)
}

func disassembleFunction(e *elf.Elf, funcName string) error {
	addr, ok := e.GetFunctionOffset(funcName)
	if !ok {
		return fmt.Errorf("function %q not found", funcName)
	}

	body, ok := e.GetFunctionChunk(funcName)
	if !ok {
		return fmt.Errorf("function %q has no resolvable body", funcName)
	}

	c, err := chain.FromString(chain.StubDecoder{}, addr, body)
	if err != nil {
		return fmt.Errorf("disassemble %q: %w", funcName, err)
	}

	fmt.Printf("%s @ 0x%08x:\n%s\n", funcName, addr, c.String())

	return nil
}

// watchAndReinspect re-runs inspect whenever path changes, following the
// same "create watcher, add path, select on Events/Errors" shape the
// toolchain's own file watcher uses.
func watchAndReinspect(path, funcName string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if err := inspect(path, funcName); err != nil {
				log.Printf("elfinspect: re-inspect failed: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			log.Printf("elfinspect: watcher error: %v", err)
		}
	}
}
