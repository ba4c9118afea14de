// Package shell implements the interactive command loop (§6, "Shell
// (external collaborator)") that drives a machine.Machine: load, run,
// debug, registers, memory, help, exit.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"decvm/machine"
	"decvm/mem"
)

// Shell reads commands from In and writes output to Out, operating on a
// single Machine for its whole lifetime.
type Shell struct {
	Machine   *machine.Machine
	In        io.Reader
	Out       io.Writer
	MaxCycles int
}

// New returns a Shell wired to m, reading from in and writing to out, with
// the run command bounded by machine.DefaultMaxCycles.
func New(m *machine.Machine, in io.Reader, out io.Writer) *Shell {
	return &Shell{Machine: m, In: in, Out: out, MaxCycles: machine.DefaultMaxCycles}
}

// Run executes the command loop until "exit" is entered or In reaches EOF.
func (s *Shell) Run() error {
	fmt.Fprintln(s.Out, "=== SIMULADOR HARDWARE VIRTUAL ===")
	s.printHelp()

	scanner := bufio.NewScanner(s.In)
	for {
		fmt.Fprint(s.Out, "\nShell> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "exit":
			return nil
		case "help":
			s.printHelp()
		case "load":
			s.cmdLoad(args)
		case "run":
			s.cmdRun()
		case "debug":
			s.cmdDebug()
		case "registers":
			s.printRegisters()
		case "memory":
			s.cmdMemory(args)
		default:
			fmt.Fprintln(s.Out, "Comando desconocido.")
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.Out, "\n--- Comandos Disponibles ---")
	fmt.Fprintln(s.Out, " load <archivo> : Carga un programa en memoria")
	fmt.Fprintln(s.Out, " run            : Ejecuta el programa hasta finalizar o agotar el limite de ciclos")
	fmt.Fprintln(s.Out, " debug          : Entra en modo debugger interactivo")
	fmt.Fprintln(s.Out, " registers      : Muestra el estado de los registros")
	fmt.Fprintln(s.Out, " memory <dir>   : Muestra el contenido de una direccion de memoria")
	fmt.Fprintln(s.Out, " help           : Muestra esta ayuda")
	fmt.Fprintln(s.Out, " exit           : Salir del simulador")
	fmt.Fprintln(s.Out, "----------------------------")
}

func (s *Shell) cmdLoad(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.Out, "uso: load <archivo>")
		return
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintln(s.Out, "error:", err)
		return
	}
	defer f.Close()

	res, err := s.Machine.Load(f)
	if err != nil {
		fmt.Fprintln(s.Out, "error:", err)
		return
	}
	fmt.Fprintf(s.Out, "programa %q cargado: %d instrucciones en %d\n", res.Name, res.InstructionsLoaded, res.StartAddress)
}

func (s *Shell) cmdRun() {
	n, err := s.Machine.Run(s.MaxCycles)
	if err != nil {
		fmt.Fprintln(s.Out, "error:", err)
		return
	}
	fmt.Fprintf(s.Out, "ejecucion detenida tras %d ciclo(s) (halted=%v)\n", n, s.Machine.CPU.Halted)
}

// cmdDebug hands the terminal to the CPU's single-step TUI for the
// duration of the debug session; it consumes one cycle per keypress there,
// not per shell input line, since the TUI owns its own event loop.
func (s *Shell) cmdDebug() {
	if err := s.Machine.CPU.Debug(s.Machine.CPU.PSW.PC); err != nil {
		fmt.Fprintln(s.Out, "error:", err)
	}
}

func (s *Shell) printRegisters() {
	c := s.Machine.CPU
	fmt.Fprintln(s.Out, "\n[Registros CPU]")
	fmt.Fprintf(s.Out, " AC:  [%d] %07d\n", c.AC.Sign, c.AC.Magnitude)
	fmt.Fprintf(s.Out, " PC:  %05d\n", c.PSW.PC)
	fmt.Fprintf(s.Out, " SP:  %05d  RX: %05d  RB: %05d  RL: %05d\n", c.SP, c.RX, c.RB, c.RL)
	fmt.Fprintf(s.Out, " PSW: CC=%d Mode=%d Int=%d\n", c.PSW.CC, c.PSW.Mode, c.PSW.IE)
	fmt.Fprintf(s.Out, " IR:  Op=%02d Mode=%d Val=%05d\n", c.IR.Op, c.IR.AddrMode, c.IR.Value)
}

func (s *Shell) cmdMemory(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.Out, "uso: memory <direccion>")
		return
	}
	addr, err := strconv.Atoi(args[0])
	if err != nil || addr < 0 || addr >= mem.Size {
		fmt.Fprintf(s.Out, "direccion invalida: %q\n", args[0])
		return
	}
	w, err := s.Machine.Bus.Read(addr)
	if err != nil {
		fmt.Fprintln(s.Out, "error:", err)
		return
	}
	fmt.Fprintf(s.Out, " Mem[%d] = %d (Sign: %d)\n", addr, w.Magnitude, w.Sign)
}
