package language

func init() {
	Register(Spec{
		Name:     "c++",
		Version:  "13.2.0",
		Aliases:  []string{"cpp"},
		Image:    "gcc:13",
		FileName: "main.cpp",
		CompileCmd: []string{
			"g++",
			"/workspace/main.cpp",
			"-O2",
			"-o",
			"/workspace/a.out",
		},
		RunCommand: []string{
			"/workspace/a.out",
		},
	})
}
