package runtime

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/bytearena/botnav/internal/naverr"
)

// Script is one bot's private scripting interpreter instance. Each bot
// gets its own *lua.LState so there is no shared-interpreter reentrancy
// concern between bots.
type Script struct {
	state *lua.LState
	name  string
}

// newScript creates a fresh interpreter, registers the host API functions
// and enum constants, then loads helperPath followed by scriptPath.
func newScript(helperPath, scriptPath string, api *HostAPI) (*Script, error) {
	state := lua.NewState()

	registerHostAPI(state, api)
	registerConstants(state)

	s := &Script{state: state}

	if err := state.DoFile(helperPath); err != nil {
		state.Close()
		return nil, naverr.Wrap(naverr.ScriptLoadError, err, "loading bot helper script")
	}
	if err := state.DoFile(scriptPath); err != nil {
		state.Close()
		return nil, naverr.Wrap(naverr.ScriptLoadError, err, "loading bot script")
	}

	s.name = s.callGetName()

	return s, nil
}

func (s *Script) callGetName() string {
	fn := s.state.GetGlobal("getName")
	if fn.Type() != lua.LTFunction {
		return "bot"
	}
	if err := s.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return "bot"
	}
	ret := s.state.Get(-1)
	s.state.Pop(1)
	if str, ok := ret.(lua.LString); ok {
		return string(str)
	}
	return "bot"
}

// CallMain invokes the script's main() entry point once, after bootstrap.
func (s *Script) CallMain() error {
	return s.call("main")
}

// CallTick invokes the script's _onTick(dtMs) entry point.
func (s *Script) CallTick(dtMs float64) error {
	return s.call("_onTick", lua.LNumber(dtMs))
}

func (s *Script) call(fnName string, args ...lua.LValue) error {
	fn := s.state.GetGlobal(fnName)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	if err := s.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		return naverr.Wrap(naverr.ScriptRuntimeError, err, "bot script call to "+fnName+" failed")
	}
	return nil
}

// CallMsgReceived invokes a script's onMsgReceived callback, the dispatch
// target events.Manager calls for the MsgReceived event type.
func (s *Script) CallMsgReceived(senderName, text string) error {
	return s.call("onMsgReceived", lua.LString(senderName), lua.LString(text))
}

// CallShipSpawned invokes a script's onShipSpawned callback.
func (s *Script) CallShipSpawned(name string) error {
	return s.call("onShipSpawned", lua.LString(name))
}

// CallShipKilled invokes a script's onShipKilled callback. killerName is
// empty when the death had no attributable killer.
func (s *Script) CallShipKilled(victimName, killerName string) error {
	return s.call("onShipKilled", lua.LString(victimName), lua.LString(killerName))
}

// CallPlayerJoined invokes a script's onPlayerJoined callback.
func (s *Script) CallPlayerJoined(name string) error {
	return s.call("onPlayerJoined", lua.LString(name))
}

// CallPlayerLeft invokes a script's onPlayerLeft callback.
func (s *Script) CallPlayerLeft(name string) error {
	return s.call("onPlayerLeft", lua.LString(name))
}

func (s *Script) Name() string { return s.name }

func (s *Script) Close() {
	s.state.Close()
}
