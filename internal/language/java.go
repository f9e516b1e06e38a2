package language

func init() {
	Register(Spec{
		Name:     "java",
		Version:  "21.0.2",
		Image:    "eclipse-temurin:21-jdk-alpine",
		FileName: "Main.java",

		CompileCmd: []string{
			"javac",
			"/workspace/Main.java",
		},

		RunCommand: []string{
			"java",
			"-cp",
			"/workspace",
			"Main",
		},
	})
}
