// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":        "0",
	"MEMORY_LIMIT":  fmt.Sprintf("%d", MEMORY_LIMIT),
	"NETWORK_EMPTY": fmt.Sprintf("%d", NETWORK_EMPTY),
}

// Assembler is a two pass assembler for Intcode.
//
// Each line holds optional labels ("name:"), then an instruction or a
// directive. Operands are immediate ("5", "LABEL"), position ("[5]") or
// relative to the base ("[rb]", "[rb+5]", "[rb-1]"). Compile-time
// expressions are written as $(...).
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// opMap maps instruction mnemonics, and their aliases.
var opMap = map[string]CodeOp{
	"add":  OP_ADD,
	"mul":  OP_MUL,
	"in":   OP_IN,
	"out":  OP_OUT,
	"jnz":  OP_JNZ,
	"jt":   OP_JNZ,
	"jz":   OP_JZ,
	"jf":   OP_JZ,
	"lt":   OP_LT,
	"eq":   OP_EQ,
	"arb":  OP_ARB,
	"hlt":  OP_HALT,
	"halt": OP_HALT,
}

var (
	reLabel = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	reChar  = regexp.MustCompile(`'(?:\\.|[^'\\])'`)
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
)

// valueOf returns the value of a simple word, or the label it refers to.
func (asm *Assembler) valueOf(word string) (value int64, label string, err error) {
	for range 16 {
		equate, ok := asm.Equate[word]
		if !ok {
			break
		}
		word = equate
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err == nil {
		return
	}
	err = nil

	if reLabel.MatchString(word) {
		label = word
		return
	}

	err = ErrParseValue(word)
	return
}

// operand decodes a single operand.
func (asm *Assembler) operand(word string) (mode CodeMode, value int64, label string, err error) {
	mode = PARAM_IMMEDIATE

	if strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") {
		word = word[1 : len(word)-1]
		mode = PARAM_POSITION

		if word == "rb" {
			mode = PARAM_RELATIVE
			return
		}

		if strings.HasPrefix(word, "rb+") || strings.HasPrefix(word, "rb-") {
			mode = PARAM_RELATIVE
			negate := word[2] == '-'
			value, label, err = asm.valueOf(word[3:])
			if err != nil {
				return
			}
			if negate {
				if len(label) != 0 {
					err = ErrOperandInvalid
					return
				}
				value = -value
			}
			return
		}
	}

	if len(word) == 0 {
		err = ErrOperandInvalid
		return
	}

	value, label, err = asm.valueOf(word)

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key := range asm.Equate {
		v, label, _err := asm.valueOf(key)
		if _err != nil || len(label) != 0 {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt(ip)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// stripComment removes a ';' comment, ignoring any ';' inside quotes.
func stripComment(text string) string {
	var quote byte
	for n := 0; n < len(text); n++ {
		c := text[n]
		switch {
		case quote != 0 && c == '\\':
			n++
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			// pass
		case c == '\'' || c == '"':
			quote = c
		case c == ';':
			return text[:n]
		}
	}
	return text
}

// charValue expands a quoted character into its code.
func charValue(word string) string {
	str := word[1 : len(word)-1]
	if str[0] == '\\' {
		switch str[1:] {
		case "\\":
			str = "\\"
		case "n":
			str = "\n"
		case "t":
			str = "\t"
		case "'":
			str = "'"
		default:
			return word
		}
	}
	return fmt.Sprintf("%v", str[0])
}

// parseLine expands a single line into words, and handles directives
// that generate no code.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	for {
		first, rest := line, ""
		if n := strings.IndexAny(line, " \t"); n >= 0 {
			first, rest = line[:n], line[n:]
		}
		if !strings.HasSuffix(first, ":") {
			break
		}
		label := first[:len(first)-1]
		if !reLabel.MatchString(label) {
			err = ErrOperandInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.currentIp()
		line = strings.TrimSpace(rest)
	}

	// .ascii "TEXT" keeps its spaces.
	if rest, ok := strings.CutPrefix(line, ".ascii "); ok {
		var text string
		text, err = strconv.Unquote(strings.TrimSpace(rest))
		if err != nil {
			err = ErrParseValue(rest)
			return
		}
		words = []string{".data"}
		for n := range len(text) {
			words = append(words, fmt.Sprintf("%d", text[n]))
		}
		return
	}

	line = reChar.ReplaceAllStringFunc(line, charValue)

	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})

	// .equ CONST VALUE
	if len(words) > 0 && words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + len(last.Codes)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Debugf("%v: %v", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]
		for index, label := range op.Links {
			ip, ok := asm.Label[label]
			if !ok {
				lineno = op.LineNo
				line = strings.Join(op.Words, " ")
				err = ErrLabelMissing(label)
				return
			}
			op.Codes[index] += int64(ip)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []int64
	var links map[int]string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, Links: links}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	link := func(index int, label string) {
		if len(label) == 0 {
			return
		}
		if links == nil {
			links = make(map[int]string)
		}
		links[index] = label
	}

	if words[0] == ".data" {
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value int64
			var label string
			value, label, err = asm.valueOf(word)
			if err != nil {
				return
			}
			link(len(codes), label)
			codes = append(codes, value)
		}
		return
	}

	op, ok := opMap[words[0]]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	args := words[1:]
	if len(args) < op.Params() {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > op.Params() {
		err = ErrOpcodeExtraArgs
		return
	}

	modes := make([]CodeMode, len(args))
	codes = make([]int64, 1+len(args))
	for n, arg := range args {
		var label string
		modes[n], codes[1+n], label, err = asm.operand(arg)
		if err != nil {
			return
		}
		if op.HasTarget() && n == len(args)-1 && modes[n] == PARAM_IMMEDIATE {
			err = ErrTargetInvalid
			return
		}
		link(1+n, label)
	}
	codes[0] = int64(MakeCode(op, modes...))

	return
}
