package mockapi

// SeedAccount is a login created by Seed.
type SeedAccount struct {
	Name     string
	Email    string
	Password string
	RoleID   int64
}

// DemoAccounts are the logins Seed creates.
var DemoAccounts = []SeedAccount{
	{Name: "Shelter Admin", Email: "admin@pawsitive.local", Password: "admin", RoleID: RoleAdmin},
	{Name: "Dana Donor", Email: "donor@pawsitive.local", Password: "donor", RoleID: RoleDonor},
	{Name: "Ari Adoptor", Email: "adoptor@pawsitive.local", Password: "adoptor", RoleID: RoleAdoptor},
}

var demoPets = []struct {
	name, species, status string
}{
	{"Bruno", "Dog", "Available"},
	{"Mochi", "Cat", "Available"},
	{"Pepper", "Dog", "Pending"},
	{"Luna", "Cat", "Adopted"},
}

// Seed fills the server with the demo accounts and a small catalog.
func (s *Server) Seed() {
	for _, a := range DemoAccounts {
		s.AddUser(a.Name, a.Email, a.Password, a.RoleID)
	}
	for _, p := range demoPets {
		s.AddPet(p.name, p.species, p.status)
	}
}
