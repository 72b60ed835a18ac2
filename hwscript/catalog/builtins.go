package catalog

import (
	"sort"

	"github.com/dhamidi/hws/hwscript/shape"
)

func fn(params ...string) shape.Function {
	f := shape.Function{}
	for _, p := range params {
		f.Params = append(f.Params, shape.Param{Name: p, Type: shape.Any{}})
	}
	return f
}

var predefined = []*Group{
	{Name: "Window", Properties: []Property{
		{Name: "width", Shape: shape.Number{}, RawType: "number", Description: "Window width in pixels."},
		{Name: "height", Shape: shape.Number{}, RawType: "number", Description: "Window height in pixels."},
		{Name: "title", Shape: shape.String{}, RawType: "string", Description: "Title of the active window."},
		{Name: "location", Shape: shape.String{}, RawType: "string", Description: "Name of the active screen."},
		{Name: "open", Shape: fn("name"), RawType: "function", Description: "Opens the named screen."},
		{Name: "close", Shape: fn(), RawType: "function", Description: "Closes the active screen."},
		{Name: "focus", Shape: fn(), RawType: "function"},
		{Name: "blur", Shape: fn(), RawType: "function"},
		{Name: "AppScanCode", Shape: fn(), RawType: "function", Description: "Starts the mobile app barcode scanner."},
	}},
	{Name: "Console", Properties: []Property{
		{Name: "log", Shape: fn("message"), RawType: "function"},
		{Name: "error", Shape: fn("message"), RawType: "function"},
		{Name: "warn", Shape: fn("message"), RawType: "function"},
		{Name: "info", Shape: fn("message"), RawType: "function"},
	}},
	{Name: "Math", Properties: []Property{
		{Name: "random", Shape: fn(), RawType: "function"},
		{Name: "floor", Shape: fn("x"), RawType: "function"},
		{Name: "ceil", Shape: fn("x"), RawType: "function"},
		{Name: "round", Shape: fn("x"), RawType: "function"},
		{Name: "abs", Shape: fn("x"), RawType: "function"},
		{Name: "PI", Shape: shape.Number{}, RawType: "number"},
		{Name: "E", Shape: shape.Number{}, RawType: "number"},
	}},
}

// Builtins returns the predefined runtime objects.
func Builtins() *Groups {
	return NewGroups(predefined...)
}

// System variables are referenced as "$Name" and hold scalar values.
var systemVariables = []Property{
	{Name: "Year", Shape: shape.Number{}, RawType: "UINT", Description: "Current year of the panel clock."},
	{Name: "Month", Shape: shape.Number{}, RawType: "UINT", Description: "Current month, 1 to 12."},
	{Name: "Day", Shape: shape.Number{}, RawType: "UINT", Description: "Current day of the month."},
	{Name: "Hour", Shape: shape.Number{}, RawType: "UINT", Description: "Current hour, 0 to 23."},
	{Name: "Minute", Shape: shape.Number{}, RawType: "UINT", Description: "Current minute."},
	{Name: "Second", Shape: shape.Number{}, RawType: "UINT", Description: "Current second."},
	{Name: "Week", Shape: shape.Number{}, RawType: "UINT", Description: "Day of the week, 0 is Sunday."},
	{Name: "UserName", Shape: shape.String{Length: 32}, RawType: "STRING", Description: "Name of the logged in user."},
	{Name: "UserLevel", Shape: shape.Number{}, RawType: "UINT", Description: "Permission level of the logged in user."},
	{Name: "ScreenNo", Shape: shape.Number{}, RawType: "UINT", Description: "Number of the active screen."},
	{Name: "Language", Shape: shape.Number{}, RawType: "UINT", Description: "Index of the active display language."},
	{Name: "Backlight", Shape: shape.Boolean{}, RawType: "BOOL"},
}

// SystemVariables returns the system variables ordered by name.
func SystemVariables() []Property {
	out := append([]Property(nil), systemVariables...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func SystemVariable(name string) (Property, bool) {
	for _, p := range systemVariables {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Function is a global function of the script runtime.
type Function struct {
	Name      string
	Signature string
	Doc       string
}

var functions = []Function{
	{Name: "len", Signature: "len(array: any[]): number", Doc: "Returns the length of an array."},
	{Name: "parse", Signature: "parse(json: string): object", Doc: "Parses a JSON string."},
	{Name: "print", Signature: "print(message: string): void", Doc: "Prints a message to the console."},
	{Name: "stringify", Signature: "stringify(obj: object): string", Doc: "Converts an object to JSON."},
	{Name: "typeof", Signature: "typeof(value: any): string", Doc: "Returns the type of a value."},
}

// Functions returns the runtime functions ordered by name.
func Functions() []Function {
	return append([]Function(nil), functions...)
}

func LookupFunction(name string) (Function, bool) {
	for _, f := range functions {
		if f.Name == name {
			return f, true
		}
	}
	return Function{}, false
}
