package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Leizel2402/cocoon-platform-sub000/models"
	"github.com/Leizel2402/cocoon-platform-sub000/services"
	"github.com/Leizel2402/cocoon-platform-sub000/store"
	"github.com/Leizel2402/cocoon-platform-sub000/utils"
)

type UserController struct {
	store store.Store
}

func NewUserController(st store.Store) *UserController {
	return &UserController{store: st}
}

func (uc *UserController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	existing, err := uc.store.Find(context.Background(), services.CollUsers, bson.M{"email": req.Email})
	if err != nil {
		return respondError(c, err)
	}
	if len(existing) > 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "User with this email already exists"})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	role := req.Role
	if role != models.RoleLandlord {
		role = models.RoleRenter
	}

	user := models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Password:  hashedPassword,
		Name:      req.Name,
		Phone:     req.Phone,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	doc, err := store.ToDoc(user)
	if err != nil {
		return respondError(c, err)
	}
	if err := uc.store.Insert(context.Background(), services.CollUsers, doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	user.Password = ""

	return c.JSON(http.StatusCreated, models.LoginResponse{Token: token, User: user})
}

func (uc *UserController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	docs, err := uc.store.Find(context.Background(), services.CollUsers, bson.M{"email": req.Email})
	if err != nil || len(docs) == 0 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}
	var user models.User
	if err := store.Decode(docs[0], &user); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
	}

	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Account is deactivated"})
	}
	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	user.Password = ""

	return c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: user})
}

func (uc *UserController) GetProfile(c echo.Context) error {
	doc, err := uc.store.Get(context.Background(), services.CollUsers, userID(c))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}
	var user models.User
	if err := store.Decode(doc, &user); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
	}
	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

func (uc *UserController) UpdateProfile(c echo.Context) error {
	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if err := uc.store.Update(context.Background(), services.CollUsers, userID(c), set); err != nil {
		return respondError(c, err)
	}
	return uc.GetProfile(c)
}
