package language

func init() {
	Register(Spec{
		Name:     "javascript",
		Version:  "20.11.1",
		Aliases:  []string{"js", "node"},
		Image:    "node:20-alpine",
		FileName: "main.js",
		RunCommand: []string{
			"node",
			"/workspace/main.js",
		},
	})
}
