package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Nymos1111/dev-password-organizer/pkg/generator"
	"github.com/Nymos1111/dev-password-organizer/pkg/models"
	"github.com/Nymos1111/dev-password-organizer/pkg/vault"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return userErrorf("%s: %v", fs.Name(), err)
	}
	if fs.NArg() != 0 {
		return userErrorf("%s: unexpected positional arguments", fs.Name())
	}
	return nil
}

func runAddProject(s *session, args []string) error {
	fs := newFlagSet("add-project")
	name := fs.String("name", "", "project name")
	description := fs.String("description", "", "project description")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *name == "" {
		return userError{msg: "add-project: -name is required"}
	}

	v, _, err := s.open()
	if err != nil {
		return err
	}
	defer v.Close()

	if _, exists := v.Project(*name); exists {
		fmt.Fprintf(s.errOut, "warning: project %q already exists and is replaced\n", *name)
	}
	v.AddProject(*name, *description)
	fmt.Fprintf(s.out, "Project '%s' created.\n", *name)
	return s.persist(v)
}

func runListProjects(s *session, args []string) error {
	if err := parseFlags(newFlagSet("list-projects"), args); err != nil {
		return err
	}

	v, err := s.openExisting()
	if err != nil {
		return err
	}
	defer v.Close()

	printProjects(s.out, v)
	return nil
}

func printProjects(w io.Writer, v *vault.Vault) {
	projects := v.ListProjects()
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects.")
		return
	}

	fmt.Fprintln(w, "Projects:")
	for _, p := range projects {
		fmt.Fprintf(w, " - %s: %s\n", p.Name, p.Description)
		for _, c := range p.Credentials() {
			fmt.Fprintf(w, "   └── %s\n", formatCredential(c))
		}
	}
}

func formatCredential(c models.Credential) string {
	switch v := c.(type) {
	case *models.DatabaseCredential:
		return fmt.Sprintf("[DB] %s (%s:%d)", v.CredentialName, v.Host, v.Port)
	default:
		return fmt.Sprintf("[%s] %s", c.Kind(), c.Name())
	}
}

func runRemoveProject(s *session, args []string) error {
	fs := newFlagSet("remove-project")
	name := fs.String("name", "", "project name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *name == "" {
		return userError{msg: "remove-project: -name is required"}
	}

	v, err := s.openExisting()
	if err != nil {
		return err
	}
	defer v.Close()

	if !v.RemoveProject(*name) {
		return userErrorf("project %q not found", *name)
	}
	fmt.Fprintf(s.out, "Project '%s' removed.\n", *name)
	return s.persist(v)
}

// resolveProject finds the named project, or the only project when name is empty
func resolveProject(v *vault.Vault, name string) (*models.Project, error) {
	if name == "" {
		projects := v.ListProjects()
		switch len(projects) {
		case 0:
			return nil, userError{msg: "no projects yet; create one with add-project"}
		case 1:
			return projects[0], nil
		default:
			return nil, userError{msg: "vault has several projects; choose one with -project"}
		}
	}

	p, ok := v.Project(name)
	if !ok {
		return nil, userErrorf("project %q not found", name)
	}
	return p, nil
}

func runAddCredential(s *session, args []string) error {
	fs := newFlagSet("add-credential")
	project := fs.String("project", "", "project name")
	name := fs.String("name", "", "credential name")
	host := fs.String("host", "", "database host")
	user := fs.String("user", "", "database user")
	password := fs.String("password", "", "database password")
	port := fs.Int("port", models.DefaultPort, "database port")
	generate := fs.Bool("generate", false, "generate the database password")
	length := fs.Int("length", generator.DefaultOptions().Length, "generated password length")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *name == "" || *host == "" || *user == "" || (*password == "" && !*generate) {
		return userError{msg: "add-credential: -name, -host, -user and -password (or -generate) are required"}
	}
	if *password != "" && *generate {
		return userError{msg: "add-credential: -password and -generate are mutually exclusive"}
	}
	if *port <= 0 || *port > 65535 {
		return userErrorf("add-credential: invalid port %d", *port)
	}

	secret := *password
	if *generate {
		opts := generator.DefaultOptions()
		opts.Length = *length
		generated, err := generator.Generate(opts)
		if err != nil {
			return userErrorf("add-credential: %v", err)
		}
		secret = generated
	}

	v, err := s.openExisting()
	if err != nil {
		return err
	}
	defer v.Close()

	p, err := resolveProject(v, *project)
	if err != nil {
		return err
	}

	p.AddCredential(models.NewDatabaseCredential(*name, *host, *user, secret, *port))
	fmt.Fprintf(s.out, "Credential '%s' added to project '%s'.\n", *name, p.Name)
	if *generate {
		fmt.Fprintf(s.out, "Generated password: %s\n", secret)
	}
	return s.persist(v)
}

func runRemoveCredential(s *session, args []string) error {
	fs := newFlagSet("remove-credential")
	project := fs.String("project", "", "project name")
	name := fs.String("name", "", "credential name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *name == "" {
		return userError{msg: "remove-credential: -name is required"}
	}

	v, err := s.openExisting()
	if err != nil {
		return err
	}
	defer v.Close()

	p, err := resolveProject(v, *project)
	if err != nil {
		return err
	}
	if !p.RemoveCredential(*name) {
		return userErrorf("credential %q not found in project %q", *name, p.Name)
	}
	fmt.Fprintf(s.out, "Credential '%s' removed from project '%s'.\n", *name, p.Name)
	return s.persist(v)
}

func runShow(s *session, args []string) error {
	fs := newFlagSet("show")
	project := fs.String("project", "", "project name")
	name := fs.String("name", "", "credential name")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *name == "" {
		return userError{msg: "show: -name is required"}
	}

	v, err := s.openExisting()
	if err != nil {
		return err
	}
	defer v.Close()

	p, err := resolveProject(v, *project)
	if err != nil {
		return err
	}
	c, ok := p.Credential(*name)
	if !ok {
		return userErrorf("credential %q not found in project %q", *name, p.Name)
	}
	printCredential(s.out, c)
	return nil
}

func printCredential(w io.Writer, c models.Credential) {
	db, ok := c.(*models.DatabaseCredential)
	if !ok {
		fmt.Fprintln(w, formatCredential(c))
		return
	}
	fmt.Fprintf(w, "Name: %s\n", db.CredentialName)
	fmt.Fprintf(w, "Host: %s\n", db.Host)
	fmt.Fprintf(w, "Port: %d\n", db.Port)
	fmt.Fprintf(w, "User: %s\n", db.User)
	fmt.Fprintf(w, "Password: %s\n", db.Password)
}

func runChangePassword(s *session, args []string) error {
	if err := parseFlags(newFlagSet("change-password"), args); err != nil {
		return err
	}

	v, err := s.openExisting()
	if err != nil {
		return err
	}
	defer v.Close()

	pw, err := s.newMasterPassword("Enter new master password: ")
	if err != nil {
		return err
	}
	next, err := v.ChangePassword(pw)
	if err != nil {
		return err
	}
	defer next.Close()

	fmt.Fprintln(s.out, "Master password changed.")
	return s.persist(next)
}

func runLoad(s *session, args []string) error {
	if err := parseFlags(newFlagSet("load"), args); err != nil {
		return err
	}

	v, err := s.openExisting()
	if err != nil {
		return err
	}
	defer v.Close()

	fmt.Fprintf(s.out, "Vault unlocked: %d project(s).\n", len(v.ListProjects()))
	return nil
}

func runSave(s *session, args []string) error {
	if err := parseFlags(newFlagSet("save"), args); err != nil {
		return err
	}

	v, _, err := s.open()
	if err != nil {
		return err
	}
	defer v.Close()

	return s.persist(v)
}

func runGenerate(s *session, args []string) error {
	fs := newFlagSet("generate")
	opts := generator.DefaultOptions()
	fs.IntVar(&opts.Length, "length", opts.Length, "password length")
	fs.BoolVar(&opts.Symbols, "symbols", opts.Symbols, "include symbols")
	fs.BoolVar(&opts.ExcludeSimilar, "exclude-similar", opts.ExcludeSimilar, "exclude similar characters (i, l, 1, L, o, 0, O)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	secret, err := generator.Generate(opts)
	if err != nil {
		return userErrorf("generate: %v", err)
	}
	fmt.Fprintln(s.out, secret)
	return nil
}

// confirmOption handles y/n confirmation with a default
func confirmOption(input string, defaultValue bool) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return defaultValue
	}
	return input == "y" || input == "yes"
}
