package luascript

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/vk/statetree/internal/ctxlog"
	"github.com/vk/statetree/internal/fsutil"
	"github.com/vk/statetree/internal/module"
	"github.com/vk/statetree/internal/registry"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// FileExtension is the extension of handler scripts.
const FileExtension = ".lua"

// Section names in the table a script returns.
const (
	sectionGetters   = "getters"
	sectionMutations = "mutations"
	sectionActions   = "actions"
	sectionFactories = "factories"
)

var sections = []string{sectionGetters, sectionMutations, sectionActions, sectionFactories}

// Script is a compiled handler script. It implements registry.Module.
type Script struct {
	name   string
	proto  *lua.FunctionProto
	logger *slog.Logger

	// names holds the handler names of each section, sorted.
	names map[string][]string

	mu     sync.Mutex
	idle   []*instance
	all    []*instance
	closed bool
}

// instance is one interpreter with the script evaluated in it.
type instance struct {
	L       *lua.LState
	exports *lua.LTable
}

var _ registry.Module = (*Script)(nil)

// LoadAll compiles every script found under paths, in lexical order.
func LoadAll(ctx context.Context, paths ...string) ([]*Script, error) {
	files, err := fsutil.FindFilesByExtension(FileExtension, paths...)
	if err != nil {
		return nil, err
	}

	scripts := make([]*Script, 0, len(files))
	for _, file := range files {
		s, err := Load(ctx, file)
		if err != nil {
			for _, loaded := range scripts {
				loaded.Close()
			}
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// Load compiles the script at path and evaluates it once to validate its
// shape.
func Load(ctx context.Context, path string) (*Script, error) {
	logger := ctxlog.FromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lua script: %w", err)
	}
	defer f.Close()

	chunk, err := parse.Parse(bufio.NewReader(f), path)
	if err != nil {
		return nil, fmt.Errorf("parsing lua script %s: %w", path, err)
	}
	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return nil, fmt.Errorf("compiling lua script %s: %w", path, err)
	}

	s := &Script{name: path, proto: proto, logger: logger, names: make(map[string][]string)}
	inst, err := s.newInstance()
	if err != nil {
		return nil, err
	}

	for _, section := range sections {
		names, err := sectionNames(inst.exports, section)
		if err != nil {
			inst.L.Close()
			return nil, fmt.Errorf("%w %s: %w", ErrInvalidScript, path, err)
		}
		s.names[section] = names
	}
	s.all = append(s.all, inst)
	s.idle = append(s.idle, inst)

	logger.Debug("Loaded lua script.", "script", path,
		"getters", len(s.names[sectionGetters]),
		"mutations", len(s.names[sectionMutations]),
		"actions", len(s.names[sectionActions]),
		"factories", len(s.names[sectionFactories]))
	return s, nil
}

// sectionNames validates one section and returns its handler names.
func sectionNames(exports *lua.LTable, section string) ([]string, error) {
	switch v := exports.RawGetString(section).(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		set := make(map[string]struct{})
		var bad error
		v.ForEach(func(k, fn lua.LValue) {
			key, ok := k.(lua.LString)
			if !ok {
				bad = fmt.Errorf("%s: key %s is not a string", section, k)
				return
			}
			if fn.Type() != lua.LTFunction {
				bad = fmt.Errorf("%s.%s is a %s, not a function", section, key, fn.Type())
				return
			}
			set[string(key)] = struct{}{}
		})
		if bad != nil {
			return nil, bad
		}
		return slices.Sorted(maps.Keys(set)), nil
	default:
		return nil, fmt.Errorf("%s must be a table, got %s", section, v.Type())
	}
}

// Name is the path the script was loaded from.
func (s *Script) Name() string {
	return s.name
}

// Register adds every handler of the script to r.
func (s *Script) Register(r *registry.Registry) {
	for _, name := range s.names[sectionGetters] {
		r.RegisterGetter(name, s.getter(name))
	}
	for _, name := range s.names[sectionMutations] {
		r.RegisterMutation(name, s.mutation(name))
	}
	for _, name := range s.names[sectionActions] {
		r.RegisterAction(name, s.action(name))
	}
	for _, name := range s.names[sectionFactories] {
		r.RegisterStateFactory(name, s.factory(name))
	}
}

// Close releases every interpreter. It must not race with running handlers;
// calls made afterwards fail with ErrClosed.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, inst := range s.all {
		inst.L.Close()
	}
	s.all, s.idle = nil, nil
}

func (s *Script) newInstance() (*instance, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	L.Push(L.NewFunctionFromProto(s.proto))
	if err := L.PCall(0, 1, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("evaluating lua script %s: %w", s.name, err)
	}
	exports, ok := L.Get(-1).(*lua.LTable)
	L.Pop(1)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("%w %s: script must return a table", ErrInvalidScript, s.name)
	}
	return &instance{L: L, exports: exports}, nil
}

// openSafeLibraries opens only libraries without file system or process
// access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

func (s *Script) acquire() (*instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if n := len(s.idle); n > 0 {
		inst := s.idle[n-1]
		s.idle = s.idle[:n-1]
		return inst, nil
	}

	inst, err := s.newInstance()
	if err != nil {
		return nil, err
	}
	s.all = append(s.all, inst)
	return inst, nil
}

func (s *Script) release(inst *instance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	inst.L.SetTop(0)
	s.idle = append(s.idle, inst)
}

// call runs section.name with the arguments built by args and returns its
// first result. The result belongs to a pooled interpreter: convert it before
// calling release.
func (s *Script) call(ctx context.Context, section, name string, args func(L *lua.LState) []lua.LValue) (ret lua.LValue, release func(), err error) {
	inst, err := s.acquire()
	if err != nil {
		return nil, nil, err
	}
	if err := s.protectedCall(ctx, inst, section, name, args); err != nil {
		s.release(inst)
		return nil, nil, err
	}
	ret = inst.L.Get(-1)
	inst.L.Pop(1)
	return ret, func() { s.release(inst) }, nil
}

func (s *Script) protectedCall(ctx context.Context, inst *instance, section, name string, args func(L *lua.LState) []lua.LValue) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic in %s.%s: %v", section, name, r)
		}
	}()

	if ctx.Done() != nil {
		inst.L.SetContext(ctx)
		defer inst.L.RemoveContext()
	}

	fn := inst.exports.RawGetString(section).(*lua.LTable).RawGetString(name)
	if err := inst.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args(inst.L)...); err != nil {
		return fmt.Errorf("%s %s.%s: %w", s.name, section, name, err)
	}
	return nil
}

func (s *Script) getter(name string) module.Getter {
	return func(state, getters, rootState, rootGetters map[string]any) any {
		ret, done, err := s.call(context.Background(), sectionGetters, name, func(L *lua.LState) []lua.LValue {
			return []lua.LValue{toLua(L, state), toLua(L, getters), toLua(L, rootState), toLua(L, rootGetters)}
		})
		if err != nil {
			s.logger.Error("Lua getter failed.", "script", s.name, "getter", name, "error", err)
			return nil
		}
		defer done()
		return toGo(ret, nil)
	}
}

func (s *Script) mutation(name string) module.Mutation {
	return func(state map[string]any, payload any) {
		var table *lua.LTable
		_, done, err := s.call(context.Background(), sectionMutations, name, func(L *lua.LState) []lua.LValue {
			table = toLua(L, state).(*lua.LTable)
			return []lua.LValue{table, toLua(L, payload)}
		})
		if err != nil {
			s.logger.Error("Lua mutation failed.", "script", s.name, "mutation", name, "error", err)
			return
		}
		defer done()

		next := toGoMap(table, state)
		clear(state)
		maps.Copy(state, next)
	}
}

func (s *Script) action(name string) module.Action {
	return func(ctx context.Context, ac *module.ActionContext, payload any) (any, error) {
		if ctx == nil {
			ctx = context.Background()
		}
		if ac == nil {
			ac = &module.ActionContext{}
		}
		ret, done, err := s.call(ctx, sectionActions, name, func(L *lua.LState) []lua.LValue {
			return []lua.LValue{actionContextTable(ctx, L, ac), toLua(L, payload)}
		})
		if err != nil {
			return nil, err
		}
		defer done()
		return toGo(ret, nil), nil
	}
}

func (s *Script) factory(name string) registry.StateFactory {
	return func() map[string]any {
		ret, done, err := s.call(context.Background(), sectionFactories, name, func(*lua.LState) []lua.LValue { return nil })
		if err != nil {
			s.logger.Error("Lua state factory failed.", "script", s.name, "factory", name, "error", err)
			return nil
		}
		defer done()
		t, ok := ret.(*lua.LTable)
		if !ok {
			return nil
		}
		return toGoMap(t, nil)
	}
}

// errNoCallback is raised inside Lua when an action uses commit or dispatch
// without the caller providing it.
var errNoCallback = errors.New("not available in this action context")

// actionContextTable exposes an ActionContext to Lua.
func actionContextTable(ctx context.Context, L *lua.LState, ac *module.ActionContext) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("state", toLua(L, ac.State))
	t.RawSetString("getters", toLua(L, ac.Getters))
	t.RawSetString("root_state", toLua(L, ac.RootState))
	t.RawSetString("root_getters", toLua(L, ac.RootGetters))

	t.RawSetString("commit", L.NewFunction(func(L *lua.LState) int {
		if ac.Commit == nil {
			L.RaiseError("commit: %s", errNoCallback)
			return 0
		}
		ac.Commit(L.CheckString(1), toGo(L.Get(2), nil))
		return 0
	}))
	t.RawSetString("dispatch", L.NewFunction(func(L *lua.LState) int {
		if ac.Dispatch == nil {
			L.RaiseError("dispatch: %s", errNoCallback)
			return 0
		}
		res, err := ac.Dispatch(ctx, L.CheckString(1), toGo(L.Get(2), nil))
		if err != nil {
			L.RaiseError("dispatch: %s", err.Error())
			return 0
		}
		L.Push(toLua(L, res))
		return 1
	}))
	return t
}
