package mockapi

import (
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/tidwall/gjson"
)

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.Password == req.Password {
			c.JSON(http.StatusOK, s.identityBody(u))
			return
		}
	}
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
}

func (s *Server) handleSignup(c *gin.Context) {
	var req struct {
		Name          string `json:"name"`
		Email         string `json:"email"`
		Password      string `json:"password"`
		Role          string `json:"role"`
		ContactNumber string `json:"contact_number"`
		Address       string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}
	roleName := req.Role
	if roleName == "" {
		roleName = "Donor"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
			return
		}
	}
	var roleID int64
	for _, r := range s.roles {
		if strings.EqualFold(r.RoleName, roleName) {
			roleID = r.RoleID
		}
	}
	if roleID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
		return
	}
	u := &user{
		ID:            s.allocate("user"),
		Name:          name,
		Email:         email,
		Password:      req.Password,
		RoleID:        roleID,
		Status:        "active",
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		CreatedAt:     time.Now(),
	}
	s.users[u.ID] = u
	c.JSON(http.StatusCreated, s.identityBody(u))
}

func (s *Server) handleListRoles(c *gin.Context) {
	s.mu.Lock()
	roles := append([]api.RoleRecord(nil), s.roles...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, roles)
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, s.identityBody(u))
}

func (s *Server) handleListPets(c *gin.Context) {
	status := c.Query("status")
	s.mu.Lock()
	pets := make([]api.Pet, 0, len(s.pets))
	for _, p := range s.pets {
		if status != "" && !strings.EqualFold(p.Status, status) {
			continue
		}
		pets = append(pets, *p)
	}
	s.mu.Unlock()
	sort.Slice(pets, func(i, j int) bool { return pets[i].PetID < pets[j].PetID })
	c.JSON(http.StatusOK, pets)
}

func (s *Server) handleGetPet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	p, exists := s.pets[id]
	var pet api.Pet
	if exists {
		pet = *p
	}
	s.mu.Unlock()
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, pet)
}

func (s *Server) handleCreatePet(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid pet payload"})
		return
	}
	payload := gjson.ParseBytes(body)

	addedBy := payload.Get("addedBy.user_id")
	if !addedBy.Exists() {
		addedBy = payload.Get("addedBy.id")
	}
	if !addedBy.Exists() {
		addedBy = payload.Get("addedBy")
	}
	age := payload.Get("age")
	if !age.Exists() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error creating pet: Invalid number format for 'age' or 'addedBy' ID."})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[addedBy.Int()]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Valid user (addedBy) is required and must exist."})
		return
	}
	p := &api.Pet{
		PetID:       s.allocate("pet"),
		Name:        payload.Get("name").String(),
		Species:     payload.Get("species").String(),
		Breed:       payload.Get("breed").String(),
		Age:         int(age.Int()),
		Gender:      payload.Get("gender").String(),
		Status:      payload.Get("status").String(),
		Description: payload.Get("description").String(),
		ImageURL:    payload.Get("image_url").String(),
		CreatedAt:   api.Timestamp(time.Now().Format("2006-01-02T15:04:05")),
	}
	s.pets[p.PetID] = p
	c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdatePet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in api.Pet
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid pet payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.pets[id]
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	in.PetID = id
	in.CreatedAt = existing.CreatedAt
	*existing = in
	c.JSON(http.StatusOK, existing)
}

func (s *Server) handleDeletePet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pets[id]; !exists {
		c.Status(http.StatusNotFound)
		return
	}
	delete(s.pets, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "file is required"})
		return
	}
	filename := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	c.JSON(http.StatusOK, api.UploadResult{URL: s.uploadBase + "/" + filename, Filename: filename})
}

func (s *Server) handleCreateApplication(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Pet and user are required"})
		return
	}
	petID := firstID(body, "pet.pet_id", "pet.id")
	userID := firstID(body, "user.user_id", "user.id")
	if petID == 0 || userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Pet ID and User ID are required"})
		return
	}
	status := gjson.GetBytes(body, "status").String()
	if status == "" {
		status = "Pending"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pet, ok := s.pets[petID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Pet not found"})
		return
	}
	u, ok := s.users[userID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	petCopy := *pet
	app := &api.Application{
		ApplicationID:   s.allocate("application"),
		Pet:             &petCopy,
		User:            u.ref(),
		ApplicationDate: api.Timestamp(time.Now().Format("2006-01-02T15:04:05")),
		Status:          status,
	}
	s.applications[app.ApplicationID] = app
	c.JSON(http.StatusCreated, app)
}

func (s *Server) handleListApplications(c *gin.Context) {
	s.mu.Lock()
	apps := make([]api.Application, 0, len(s.applications))
	for _, a := range s.applications {
		apps = append(apps, *a)
	}
	s.mu.Unlock()
	sort.Slice(apps, func(i, j int) bool { return apps[i].ApplicationID < apps[j].ApplicationID })
	c.JSON(http.StatusOK, apps)
}

func (s *Server) handleUserApplications(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	if _, exists := s.users[userID]; !exists {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	apps := make([]api.Application, 0)
	for _, a := range s.applications {
		if a.User != nil && a.User.UserID == userID {
			apps = append(apps, *a)
		}
	}
	s.mu.Unlock()
	sort.Slice(apps, func(i, j int) bool { return apps[i].ApplicationID < apps[j].ApplicationID })
	c.JSON(http.StatusOK, apps)
}

func (s *Server) handleUpdateApplication(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	app, exists := s.applications[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Application not found"})
		return
	}
	if status := gjson.GetBytes(body, "status"); status.Exists() {
		app.Status = status.String()
		if strings.EqualFold(app.Status, "Approved") && app.Pet != nil {
			if pet, ok := s.pets[app.Pet.PetID]; ok {
				pet.Status = "Adopted"
				app.Pet.Status = "Adopted"
			}
		}
	}
	if reviewer := gjson.GetBytes(body, "reviewed_by"); reviewer.Exists() {
		u, ok := s.users[reviewer.Int()]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Reviewer not found"})
			return
		}
		app.ReviewedBy = u.ref()
	}
	c.JSON(http.StatusOK, app)
}

func (s *Server) handleCreateDonation(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User is required"})
		return
	}
	if !gjson.GetBytes(body, "user").Exists() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User is required"})
		return
	}
	userID := firstID(body, "user.user_id", "user.id")
	if userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	now := time.Now()
	d := &api.Donation{
		DonationID:    s.allocate("donation"),
		Amount:        gjson.GetBytes(body, "amount").Float(),
		DonationDate:  api.Timestamp(now.Format("2006-01-02T15:04:05")),
		PaymentMethod: stringOr(gjson.GetBytes(body, "payment_method").String(), "Unknown"),
		Status:        stringOr(gjson.GetBytes(body, "status").String(), "Pending"),
		User:          u.ref(),
	}
	if petID := firstID(body, "pet.pet_id", "pet.id"); petID != 0 {
		if pet, ok := s.pets[petID]; ok {
			petCopy := *pet
			d.Pet = &petCopy
		}
	}
	s.donations[d.DonationID] = d

	number := receiptNumber(d.DonationID, now)
	s.receipts[d.DonationID] = &api.Receipt{
		ReceiptID:     s.allocate("receipt"),
		ReceiptNumber: number,
		ReceiptDate:   d.DonationDate,
		DonorName:     u.Name,
		DonorEmail:    u.Email,
		DonorAddress:  u.Address,
		PaymentMethod: d.PaymentMethod,
		Status:        d.Status,
		TransactionID: uuid.NewString(),
		Donation:      d,
	}
	c.JSON(http.StatusCreated, d)
}

func (s *Server) handleListDonations(c *gin.Context) {
	c.JSON(http.StatusOK, s.sortedDonations(0))
}

func (s *Server) handleUserDonations(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	_, exists := s.users[userID]
	s.mu.Unlock()
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, s.sortedDonations(userID))
}

func (s *Server) sortedDonations(userID int64) []api.Donation {
	s.mu.Lock()
	out := make([]api.Donation, 0, len(s.donations))
	for _, d := range s.donations {
		if userID != 0 && (d.User == nil || d.User.UserID != userID) {
			continue
		}
		out = append(out, *d)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].DonationID < out[j].DonationID })
	return out
}

func (s *Server) handleReceipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	r, exists := s.receipts[id]
	var receipt api.Receipt
	if exists {
		receipt = *r
	}
	s.mu.Unlock()
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Receipt not found"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (s *Server) handleGetProfile(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, exists := s.profiles[userID]
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var req struct {
		Bio            string `json:"bio"`
		ProfilePicture string `json:"profile_picture"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, exists := s.users[userID]
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	p, exists := s.profiles[userID]
	if !exists {
		p = &api.Profile{ProfileID: s.allocate("profile"), User: u.ref()}
		s.profiles[userID] = p
	}
	p.Bio = req.Bio
	p.ProfilePicture = req.ProfilePicture
	c.JSON(http.StatusOK, p)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return id, true
}

func firstID(body []byte, paths ...string) int64 {
	for _, path := range paths {
		if r := gjson.GetBytes(body, path); r.Exists() {
			return r.Int()
		}
	}
	return 0
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
