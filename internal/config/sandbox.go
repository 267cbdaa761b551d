package config

import (
	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed from every config VM. Configs are declarative:
// they cannot run commands, touch files, load code or reach around the
// read-only platform table.
var blockedGlobals = []string{
	"os", "io", "debug", "package",
	"require", "module", "dofile", "loadfile", "load", "loadstring",
	"collectgarbage", "rawset", "rawget", "rawequal",
	"setmetatable", "getmetatable", "setfenv", "getfenv", "newproxy",
}

// sandboxLuaVM strips a Lua VM down to string, table and math plus the safe
// base functions (type, tostring, tonumber, pairs, ipairs, ...).
func sandboxLuaVM(L *lua.LState) {
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a bounded Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: callStackSize,
		RegistrySize:  registrySize,
	})
	sandboxLuaVM(L)
	return L
}
