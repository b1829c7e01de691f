package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/z0mbix/pakcmd/internal/facts"
)

// standardFunctions returns the functions available in configuration
// expressions. Relative paths given to file functions resolve against baseDir.
func standardFunctions(baseDir string) map[string]function.Function {
	return map[string]function.Function{
		// String functions
		"upper":     stdlib.UpperFunc,
		"lower":     stdlib.LowerFunc,
		"trimspace": stdlib.TrimSpaceFunc,
		"replace":   stdlib.ReplaceFunc,
		"join":      stdlib.JoinFunc,
		"split":     stdlib.SplitFunc,
		"format":    stdlib.FormatFunc,

		// Collection functions
		"length":   stdlib.LengthFunc,
		"coalesce": stdlib.CoalesceFunc,
		"concat":   stdlib.ConcatFunc,
		"contains": stdlib.ContainsFunc,
		"distinct": stdlib.DistinctFunc,
		"reverse":  stdlib.ReverseListFunc,

		// Host functions
		"env":           envFunc,
		"file":          makeFileFunc(baseDir),
		"file_exists":   makeFileExistsFunc(baseDir),
		"basename":      basenameFunc,
		"dirname":       dirnameFunc,
		"in_path":       inPathFunc,
		"host_platform": hostPlatformFunc,
	}
}

// envFunc returns the value of an environment variable
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "name",
			Type: cty.String,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

// resolvePath joins a relative path onto baseDir. Absolute paths and an
// empty baseDir leave path unchanged.
func resolvePath(baseDir, path string) string {
	if baseDir == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// makeFileFunc reads the contents of a file without its trailing newline
func makeFileFunc(baseDir string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{
				Name: "path",
				Type: cty.String,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			content, err := os.ReadFile(resolvePath(baseDir, args[0].AsString()))
			if err != nil {
				return cty.StringVal(""), err
			}
			return cty.StringVal(strings.TrimSuffix(string(content), "\n")), nil
		},
	})
}

// makeFileExistsFunc reports whether a path exists, so os_release can fall
// back between candidate locations
func makeFileExistsFunc(baseDir string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{
				Name: "path",
				Type: cty.String,
			},
		},
		Type: function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			_, err := os.Stat(resolvePath(baseDir, args[0].AsString()))
			return cty.BoolVal(err == nil), nil
		},
	})
}

var basenameFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "path",
			Type: cty.String,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(filepath.Base(args[0].AsString())), nil
	},
})

var dirnameFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "path",
			Type: cty.String,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(filepath.Dir(args[0].AsString())), nil
	},
})

// inPathFunc reports whether an executable is on PATH. It never spawns a
// process, unlike the detector's own lookups.
var inPathFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "name",
			Type: cty.String,
		},
	},
	Type: function.StaticReturnType(cty.Bool),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		_, err := exec.LookPath(args[0].AsString())
		return cty.BoolVal(err == nil), nil
	},
})

// hostPlatformFunc returns the platform identifier of the running host
var hostPlatformFunc = function.New(&function.Spec{
	Params: []function.Parameter{},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(facts.HostPlatform()), nil
	},
})
