package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Nymos1111/dev-password-organizer/pkg/generator"
	"github.com/Nymos1111/dev-password-organizer/pkg/models"
	"github.com/Nymos1111/dev-password-organizer/pkg/vault"
)

// runShell runs the interactive menu until the user exits or input ends
func runShell(s *session, args []string) error {
	if err := parseFlags(newFlagSet("shell"), args); err != nil {
		return err
	}

	fmt.Fprintln(s.out, "=== Dev Password Organizer ===")

	v, created, err := s.open()
	if err != nil {
		return err
	}
	defer v.Close()

	dirty := created
	if !created {
		fmt.Fprintln(s.out, "Vault unlocked successfully!")
	}

	for {
		fmt.Fprintln(s.out, "\nMain Menu:")
		fmt.Fprintln(s.out, "1. List projects")
		fmt.Fprintln(s.out, "2. Add project")
		fmt.Fprintln(s.out, "3. Remove project")
		fmt.Fprintln(s.out, "4. Add credential")
		fmt.Fprintln(s.out, "5. Show credential")
		fmt.Fprintln(s.out, "6. Remove credential")
		fmt.Fprintln(s.out, "7. Generate password")
		fmt.Fprintln(s.out, "8. Save")
		fmt.Fprintln(s.out, "0. Exit")
		fmt.Fprint(s.out, "Enter your choice: ")

		choice, err := s.in.ReadString('\n')
		if err != nil && choice == "" {
			// Input closed: behave like exit
			return s.exitShell(v, dirty)
		}

		switch choice = strings.TrimSpace(choice); choice {
		case "1":
			printProjects(s.out, v)
		case "2":
			dirty = shellAddProject(s, v) || dirty
		case "3":
			dirty = shellRemoveProject(s, v) || dirty
		case "4":
			dirty = shellAddCredential(s, v) || dirty
		case "5":
			shellShowCredential(s, v)
		case "6":
			dirty = shellRemoveCredential(s, v) || dirty
		case "7":
			secret, err := generator.Generate(generator.DefaultOptions())
			if err != nil {
				fmt.Fprintf(s.out, "Error generating password: %v\n", err)
				continue
			}
			fmt.Fprintf(s.out, "\nGenerated Password: %s\n", secret)
		case "8":
			if err := s.persist(v); err != nil {
				fmt.Fprintf(s.out, "Error saving vault: %v\n", err)
				continue
			}
			dirty = false
		case "0":
			return s.exitShell(v, dirty)
		default:
			fmt.Fprintln(s.out, "Invalid choice, please try again.")
		}
	}
}

func (s *session) exitShell(v *vault.Vault, dirty bool) error {
	if dirty {
		fmt.Fprint(s.out, "Save changes before exiting? (y/n) [y]: ")
		if confirmOption(s.readLine(), true) {
			if err := s.persist(v); err != nil {
				return err
			}
		}
	}
	fmt.Fprintln(s.out, "Exiting...")
	return nil
}

func shellAddProject(s *session, v *vault.Vault) bool {
	fmt.Fprint(s.out, "Project name: ")
	name := s.readLine()
	if name == "" {
		fmt.Fprintln(s.out, "Project name is required.")
		return false
	}
	if _, exists := v.Project(name); exists {
		fmt.Fprintf(s.out, "Project '%s' exists. Replace it and all its credentials? (y/n): ", name)
		if !confirmOption(s.readLine(), false) {
			fmt.Fprintln(s.out, "Cancelled.")
			return false
		}
	}

	fmt.Fprint(s.out, "Description: ")
	v.AddProject(name, s.readLine())
	fmt.Fprintf(s.out, "Project '%s' created.\n", name)
	return true
}

func shellRemoveProject(s *session, v *vault.Vault) bool {
	p, ok := shellPickProject(s, v)
	if !ok {
		return false
	}

	fmt.Fprintf(s.out, "Delete project '%s' and its %d credential(s)? (y/n): ", p.Name, p.Len())
	if !confirmOption(s.readLine(), false) {
		fmt.Fprintln(s.out, "Deletion cancelled.")
		return false
	}
	v.RemoveProject(p.Name)
	fmt.Fprintln(s.out, "Project deleted.")
	return true
}

func shellAddCredential(s *session, v *vault.Vault) bool {
	p, ok := shellPickProject(s, v)
	if !ok {
		return false
	}

	fmt.Fprint(s.out, "Name: ")
	name := s.readLine()
	fmt.Fprint(s.out, "Host: ")
	host := s.readLine()
	fmt.Fprint(s.out, "User: ")
	user := s.readLine()
	if name == "" || host == "" || user == "" {
		fmt.Fprintln(s.out, "Name, host and user are required.")
		return false
	}

	fmt.Fprintf(s.out, "Port [%d]: ", models.DefaultPort)
	port := 0
	if portStr := s.readLine(); portStr != "" {
		n, err := strconv.Atoi(portStr)
		if err != nil || n <= 0 || n > 65535 {
			fmt.Fprintln(s.out, "Invalid port.")
			return false
		}
		port = n
	}

	fmt.Fprint(s.out, "Password (leave empty to generate): ")
	secret := s.readLine()
	if secret == "" {
		generated, err := generator.Generate(generator.DefaultOptions())
		if err != nil {
			fmt.Fprintf(s.out, "Error generating password: %v\n", err)
			return false
		}
		secret = generated
		fmt.Fprintf(s.out, "Generated password: %s\n", secret)
	}

	p.AddCredential(models.NewDatabaseCredential(name, host, user, secret, port))
	fmt.Fprintf(s.out, "Credential '%s' added to project '%s'.\n", name, p.Name)
	return true
}

func shellShowCredential(s *session, v *vault.Vault) {
	p, ok := shellPickProject(s, v)
	if !ok {
		return
	}
	fmt.Fprint(s.out, "Credential name: ")
	c, ok := p.Credential(s.readLine())
	if !ok {
		fmt.Fprintln(s.out, "Credential not found.")
		return
	}
	fmt.Fprintln(s.out)
	printCredential(s.out, c)
}

func shellRemoveCredential(s *session, v *vault.Vault) bool {
	p, ok := shellPickProject(s, v)
	if !ok {
		return false
	}
	fmt.Fprint(s.out, "Credential name: ")
	name := s.readLine()
	if !p.RemoveCredential(name) {
		fmt.Fprintln(s.out, "Credential not found.")
		return false
	}
	fmt.Fprintln(s.out, "Credential deleted.")
	return true
}

// shellPickProject lists the projects by number and reads a selection
func shellPickProject(s *session, v *vault.Vault) (*models.Project, bool) {
	projects := v.ListProjects()
	if len(projects) == 0 {
		fmt.Fprintln(s.out, "No projects yet. Add a project first.")
		return nil, false
	}

	for i, p := range projects {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, p.Name)
	}
	fmt.Fprint(s.out, "Project number: ")
	idx, err := strconv.Atoi(s.readLine())
	if err != nil || idx < 1 || idx > len(projects) {
		fmt.Fprintln(s.out, "Invalid project.")
		return nil, false
	}
	return projects[idx-1], true
}
