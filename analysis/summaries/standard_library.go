// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package summaries

import (
	"strings"

	"golang.org/x/tools/go/ssa"
)

// IsStdPackage returns true if the input package is in the standard library or the runtime. The standard library
// is defined internally as the list of packages in summaries.stdPackages
//
// Return false if the input is nil.
func IsStdPackage(pkg *ssa.Package) bool {
	if pkg == nil {
		return false
	}
	return IsStdPackageName(pkg.Pkg.Path())
}

// IsStdPackageName returns true if the package path is a package of the standard library.
func IsStdPackageName(name string) bool {
	if _, ok := stdPackages[name]; ok {
		return true
	}
	first, _, _ := strings.Cut(name, "/")
	_, ok := stdPackages[first]
	return ok || strings.HasPrefix(name, "runtime") || strings.HasPrefix(name, "internal/")
}

// stdPackages maps the packages of the standard library to the summaries of their functions. Packages with an empty
// summary map are still listed to identify the standard library.
var stdPackages = map[string]map[string]Summary{
	"archive":       {},
	"bufio":         summaryBufIo,
	"builtin":       {},
	"bytes":         summaryBytes,
	"compress":      {},
	"container":     {},
	"context":       summaryContext,
	"crypto":        {},
	"database":      {},
	"debug":         {},
	"embed":         {},
	"encoding":      {},
	"encoding/json": summaryEncodingJson,
	"errors":        summaryErrors,
	"expvar":        {},
	"flag":          summaryFlag,
	"fmt":           summaryFmt,
	"go":            {},
	"hash":          {},
	"html":          {},
	"image":         {},
	"index":         {},
	"io":            summaryIo,
	"log":           summaryLog,
	"math":          summaryMath,
	"math/rand":     summaryMathRand,
	"mime":          {},
	"net":           {},
	"net/http":      summaryNetHttp,
	"os":            summaryOs,
	"path":          summaryPath,
	"path/filepath": summaryPathFilepath,
	"plugin":        {},
	"reflect":       {},
	"regexp":        {},
	"runtime":       {},
	"sort":          summarySort,
	"strconv":       summaryStrConv,
	"strings":       summaryStrings,
	"sync":          summarySync,
	"syscall":       {},
	"testing":       {},
	"text":          {},
	"time":          summaryTime,
	"unicode":       summaryUnicode,
	"unicode/utf8":  summaryUnicodeUtf8,
	"unsafe":        {},
}

var summaryBufIo = map[string]Summary{
	// func NewReader(rd io.Reader) *Reader
	"bufio.NewReader": AllArgsPropagation,
	// func NewScanner(r io.Reader) *Scanner
	"bufio.NewScanner": AllArgsPropagation,
	// func (b *Reader) ReadString(delim byte) (string, error)
	"(*bufio.Reader).ReadString": InputSource,
	// func (b *Reader) ReadBytes(delim byte) ([]byte, error)
	"(*bufio.Reader).ReadBytes": InputSource,
	// func (b *Reader) ReadLine() (line []byte, isPrefix bool, err error)
	"(*bufio.Reader).ReadLine": InputSource,
	// func (s *Scanner) Scan() bool
	"(*bufio.Scanner).Scan": InputSource,
	// func (s *Scanner) Text() string
	"(*bufio.Scanner).Text": InputSource,
	// func (s *Scanner) Bytes() []byte
	"(*bufio.Scanner).Bytes": InputSource,
}

var summaryBytes = map[string]Summary{
	// func Equal(a, b []byte) bool
	"bytes.Equal": AllArgsPropagation,
	// func Compare(a, b []byte) int
	"bytes.Compare": AllArgsPropagation,
	// func Contains(b, subslice []byte) bool
	"bytes.Contains": AllArgsPropagation,
	// func TrimSpace(s []byte) []byte
	"bytes.TrimSpace": AllArgsPropagation,
	// func (b *Buffer) String() string
	"(*bytes.Buffer).String": AllArgsPropagation,
	// func (b *Buffer) Bytes() []byte
	"(*bytes.Buffer).Bytes": AllArgsPropagation,
	// func (b *Buffer) WriteString(s string) (n int, err error)
	"(*bytes.Buffer).WriteString": {Args: [][]int{{}, {0}}, Propagate: true},
	// func (b *Buffer) Write(p []byte) (n int, err error)
	"(*bytes.Buffer).Write": {Args: [][]int{{}, {0}}, Propagate: true},
}

var summaryContext = map[string]Summary{
	// func Background() Context
	"context.Background": NoDataFlowPropagation,
	// func TODO() Context
	"context.TODO": NoDataFlowPropagation,
}

var summaryEncodingJson = map[string]Summary{
	// func Marshal(v any) ([]byte, error)
	"encoding/json.Marshal": AllArgsPropagation,
	// func Unmarshal(data []byte, v any) error
	"encoding/json.Unmarshal": {Args: [][]int{{1}}, Propagate: true},
}

var summaryErrors = map[string]Summary{
	// func New(text string) error
	"errors.New": AllArgsPropagation,
	// func Is(err, target error) bool
	"errors.Is": AllArgsPropagation,
	// func As(err error, target any) bool
	"errors.As": {Args: [][]int{{1}}, Propagate: true},
	// func Unwrap(err error) error
	"errors.Unwrap": AllArgsPropagation,
}

var summaryFlag = map[string]Summary{
	// func Parse()
	"flag.Parse": NoDataFlowPropagation,
	// func String(name string, value string, usage string) *string
	"flag.String": InputSource,
	// func Int(name string, value int, usage string) *int
	"flag.Int": InputSource,
	// func Bool(name string, value bool, usage string) *bool
	"flag.Bool": InputSource,
	// func Args() []string
	"flag.Args": InputSource,
	// func Arg(i int) string
	"flag.Arg": InputSource,
	// func NArg() int
	"flag.NArg": InputSource,
}

var summaryFmt = map[string]Summary{
	// func Sprintf(format string, a ...any) string
	"fmt.Sprintf": AllArgsPropagation,
	// func Sprint(a ...any) string
	"fmt.Sprint": AllArgsPropagation,
	// func Sprintln(a ...any) string
	"fmt.Sprintln": AllArgsPropagation,
	// func Errorf(format string, a ...any) error
	"fmt.Errorf": AllArgsPropagation,
	// func Println(a ...any) (n int, err error)
	"fmt.Println": AllArgsPropagation,
	// func Printf(format string, a ...any) (n int, err error)
	"fmt.Printf": AllArgsPropagation,
	// func Print(a ...any) (n int, err error)
	"fmt.Print": AllArgsPropagation,
	// func Fprintf(w io.Writer, format string, a ...any) (n int, err error)
	"fmt.Fprintf": AllArgsPropagation,
	// func Fprintln(w io.Writer, a ...any) (n int, err error)
	"fmt.Fprintln": AllArgsPropagation,
	// func Scan(a ...any) (n int, err error)
	"fmt.Scan": {Input: true, InputArgs: []int{0}},
	// func Scanln(a ...any) (n int, err error)
	"fmt.Scanln": {Input: true, InputArgs: []int{0}},
	// func Scanf(format string, a ...any) (n int, err error)
	"fmt.Scanf": {Input: true, InputArgs: []int{1}},
	// func Sscanf(str string, format string, a ...any) (n int, err error)
	"fmt.Sscanf": {Args: [][]int{{2}, {2}}, Propagate: true},
	// func Sscan(str string, a ...any) (n int, err error)
	"fmt.Sscan": {Args: [][]int{{1}}, Propagate: true},
}

var summaryIo = map[string]Summary{
	// func ReadAll(r Reader) ([]byte, error)
	"io.ReadAll": InputSource,
	// func ReadFull(r Reader, buf []byte) (n int, err error)
	"io.ReadFull": {Input: true, InputArgs: []int{1}},
	// func Copy(dst Writer, src Reader) (written int64, err error)
	"io.Copy": {Args: [][]int{{}, {0}}, Propagate: true},
}

var summaryLog = map[string]Summary{
	// func Printf(format string, v ...any)
	"log.Printf": NoDataFlowPropagation,
	// func Println(v ...any)
	"log.Println": NoDataFlowPropagation,
	// func Fatal(v ...any)
	"log.Fatal": NoDataFlowPropagation,
	// func Fatalf(format string, v ...any)
	"log.Fatalf": NoDataFlowPropagation,
}

var summaryMath = map[string]Summary{
	// func Abs(x float64) float64
	"math.Abs": AllArgsPropagation,
	// func Max(x, y float64) float64
	"math.Max": AllArgsPropagation,
	// func Min(x, y float64) float64
	"math.Min": AllArgsPropagation,
	// func Sqrt(x float64) float64
	"math.Sqrt": AllArgsPropagation,
	// func Pow(x, y float64) float64
	"math.Pow": AllArgsPropagation,
	// func Floor(x float64) float64
	"math.Floor": AllArgsPropagation,
	// func Ceil(x float64) float64
	"math.Ceil": AllArgsPropagation,
}

var summaryMathRand = map[string]Summary{
	// func Int() int
	"math/rand.Int": InputSource,
	// func Intn(n int) int
	"math/rand.Intn": InputSource,
	// func Int63() int64
	"math/rand.Int63": InputSource,
	// func Float64() float64
	"math/rand.Float64": InputSource,
}

var summaryNetHttp = map[string]Summary{
	// func Get(url string) (resp *Response, err error)
	"net/http.Get": InputSource,
	// func (r *Request) FormValue(key string) string
	"(*net/http.Request).FormValue": InputSource,
	// func (c *Client) Do(req *Request) (*Response, error)
	"(*net/http.Client).Do": InputSource,
}

var summaryOs = map[string]Summary{
	// func Getenv(key string) string
	"os.Getenv": InputSource,
	// func LookupEnv(key string) (string, bool)
	"os.LookupEnv": InputSource,
	// func Environ() []string
	"os.Environ": InputSource,
	// func ReadFile(name string) ([]byte, error)
	"os.ReadFile": InputSource,
	// func Hostname() (name string, err error)
	"os.Hostname": InputSource,
	// func Getwd() (dir string, err error)
	"os.Getwd": InputSource,
	// func Open(name string) (*File, error)
	"os.Open": AllArgsPropagation,
	// func Exit(code int)
	"os.Exit": NoDataFlowPropagation,
	// func (f *File) Read(b []byte) (n int, err error)
	"(*os.File).Read": {Input: true, InputArgs: []int{1}},
	// func (f *File) ReadAt(b []byte, off int64) (n int, err error)
	"(*os.File).ReadAt": {Input: true, InputArgs: []int{1}},
	// func (f *File) Write(b []byte) (n int, err error)
	"(*os.File).Write": AllArgsPropagation,
	// func (f *File) WriteString(s string) (n int, err error)
	"(*os.File).WriteString": AllArgsPropagation,
	// func (f *File) Close() error
	"(*os.File).Close": AllArgsPropagation,
}

var summaryPath = map[string]Summary{
	// func Join(elem ...string) string
	"path.Join": AllArgsPropagation,
	// func Base(path string) string
	"path.Base": AllArgsPropagation,
	// func Dir(path string) string
	"path.Dir": AllArgsPropagation,
}

var summaryPathFilepath = map[string]Summary{
	// func Join(elem ...string) string
	"path/filepath.Join": AllArgsPropagation,
	// func Base(path string) string
	"path/filepath.Base": AllArgsPropagation,
	// func Dir(path string) string
	"path/filepath.Dir": AllArgsPropagation,
	// func Ext(path string) string
	"path/filepath.Ext": AllArgsPropagation,
	// func Clean(path string) string
	"path/filepath.Clean": AllArgsPropagation,
}

var summarySort = map[string]Summary{
	// func Ints(x []int)
	"sort.Ints": NoDataFlowPropagation,
	// func Strings(x []string)
	"sort.Strings": NoDataFlowPropagation,
}

var summaryStrConv = map[string]Summary{
	// func Itoa(i int) string
	"strconv.Itoa": AllArgsPropagation,
	// func Atoi(s string) (int, error)
	"strconv.Atoi": AllArgsPropagation,
	// func ParseInt(s string, base int, bitSize int) (i int64, err error)
	"strconv.ParseInt": AllArgsPropagation,
	// func ParseFloat(s string, bitSize int) (float64, error)
	"strconv.ParseFloat": AllArgsPropagation,
	// func ParseBool(str string) (bool, error)
	"strconv.ParseBool": AllArgsPropagation,
	// func FormatInt(i int64, base int) string
	"strconv.FormatInt": AllArgsPropagation,
	// func Quote(s string) string
	"strconv.Quote": AllArgsPropagation,
}

var summaryStrings = map[string]Summary{
	// func ToUpper(s string) string
	"strings.ToUpper": AllArgsPropagation,
	// func ToLower(s string) string
	"strings.ToLower": AllArgsPropagation,
	// func TrimSpace(s string) string
	"strings.TrimSpace": AllArgsPropagation,
	// func Trim(s, cutset string) string
	"strings.Trim": AllArgsPropagation,
	// func Split(s, sep string) []string
	"strings.Split": AllArgsPropagation,
	// func Join(elems []string, sep string) string
	"strings.Join": AllArgsPropagation,
	// func Replace(s, old, new string, n int) string
	"strings.Replace": AllArgsPropagation,
	// func ReplaceAll(s, old, new string) string
	"strings.ReplaceAll": AllArgsPropagation,
	// func Contains(s, substr string) bool
	"strings.Contains": AllArgsPropagation,
	// func HasPrefix(s, prefix string) bool
	"strings.HasPrefix": AllArgsPropagation,
	// func HasSuffix(s, suffix string) bool
	"strings.HasSuffix": AllArgsPropagation,
	// func Index(s, substr string) int
	"strings.Index": AllArgsPropagation,
	// func Repeat(s string, count int) string
	"strings.Repeat": AllArgsPropagation,
	// func Fields(s string) []string
	"strings.Fields": AllArgsPropagation,
	// func EqualFold(s, t string) bool
	"strings.EqualFold": AllArgsPropagation,
	// func (b *Builder) String() string
	"(*strings.Builder).String": AllArgsPropagation,
	// func (b *Builder) WriteString(s string) (int, error)
	"(*strings.Builder).WriteString": {Args: [][]int{{}, {0}}, Propagate: true},
}

var summarySync = map[string]Summary{
	// func (m *Mutex) Lock()
	"(*sync.Mutex).Lock": NoDataFlowPropagation,
	// func (m *Mutex) Unlock()
	"(*sync.Mutex).Unlock": NoDataFlowPropagation,
	// func (wg *WaitGroup) Add(delta int)
	"(*sync.WaitGroup).Add": NoDataFlowPropagation,
	// func (wg *WaitGroup) Done()
	"(*sync.WaitGroup).Done": NoDataFlowPropagation,
	// func (wg *WaitGroup) Wait()
	"(*sync.WaitGroup).Wait": NoDataFlowPropagation,
}

var summaryTime = map[string]Summary{
	// func Now() Time
	"time.Now": InputSource,
	// func Since(t Time) Duration
	"time.Since": InputSource,
	// func Sleep(d Duration)
	"time.Sleep": NoDataFlowPropagation,
}

var summaryUnicode = map[string]Summary{
	// func IsDigit(r rune) bool
	"unicode.IsDigit": AllArgsPropagation,
	// func IsLetter(r rune) bool
	"unicode.IsLetter": AllArgsPropagation,
	// func IsSpace(r rune) bool
	"unicode.IsSpace": AllArgsPropagation,
	// func ToUpper(r rune) rune
	"unicode.ToUpper": AllArgsPropagation,
}

var summaryUnicodeUtf8 = map[string]Summary{
	// func RuneCountInString(s string) (n int)
	"unicode/utf8.RuneCountInString": AllArgsPropagation,
	// func ValidString(s string) bool
	"unicode/utf8.ValidString": AllArgsPropagation,
}
