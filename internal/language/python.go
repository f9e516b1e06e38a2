package language

func init() {
	Register(Spec{
		Name:     "python",
		Version:  "3.12.0",
		Aliases:  []string{"py"},
		Image:    "python:3.12-alpine",
		FileName: "main.py",
		RunCommand: []string{
			"python",
			"-u",
			"main.py",
		},
	})
}
