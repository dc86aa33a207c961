package walletauth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// DirectoryControllerRoutes holds the route paths the controller registers.
// Defaults mirror the client-side API the auth flows call.
type DirectoryControllerRoutes struct {
	CheckUsername       string
	CheckEmail          string
	CreateUser          string
	UpdateUsername      string
	UpdatePasskeyStatus string
	GetUserDetails      string
	Signup              string
	Login               string
}

// DirectoryController serves the user-directory CRUD endpoints consumed by
// the auth flows: existence checks, record creation, username claim, passkey
// flag updates, and detail fetches.
type DirectoryController struct {
	Logger Logger
	Repo   RepositoryManager
	Routes *DirectoryControllerRoutes
}

type DirectoryControllerOption func(*DirectoryController) *DirectoryController

func WithDirectoryLogger(logger Logger) DirectoryControllerOption {
	return func(c *DirectoryController) *DirectoryController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithDirectoryRepository(repo RepositoryManager) DirectoryControllerOption {
	return func(c *DirectoryController) *DirectoryController {
		c.Repo = repo
		return c
	}
}

func NewDirectoryController(opts ...DirectoryControllerOption) *DirectoryController {
	c := &DirectoryController{
		Logger: defLogger{},
		Routes: &DirectoryControllerRoutes{
			CheckUsername:       "/auth/check-username",
			CheckEmail:          "/auth/check-email",
			CreateUser:          "/auth/create-user",
			UpdateUsername:      "/auth/update-username",
			UpdatePasskeyStatus: "/auth/update-passkey-status",
			GetUserDetails:      "/auth/get-user-details",
			Signup:              "/auth/signup",
			Login:               "/auth/login",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in directory controller...")
	}

	return c
}

// RegisterDirectoryRoutes registers the directory API on the given router.
func RegisterDirectoryRoutes[T any](app router.Router[T], opts ...DirectoryControllerOption) {
	controller := NewDirectoryController(opts...)

	app.Post(controller.Routes.CheckUsername, controller.CheckUsername).
		SetName("directory.check-username")
	app.Post(controller.Routes.CheckEmail, controller.CheckEmail).
		SetName("directory.check-email")
	app.Post(controller.Routes.CreateUser, controller.CreateUser).
		SetName("directory.create-user")
	app.Post(controller.Routes.UpdateUsername, controller.UpdateUsername).
		SetName("directory.update-username")
	app.Post(controller.Routes.UpdatePasskeyStatus, controller.UpdatePasskeyStatus).
		SetName("directory.update-passkey-status")
	app.Get(controller.Routes.GetUserDetails, controller.GetUserDetails).
		SetName("directory.get-user-details")
	app.Post(controller.Routes.Signup, controller.Signup).
		SetName("directory.signup")
	app.Post(controller.Routes.Login, controller.Login).
		SetName("directory.login")
}

// CheckPayload carries a single existence-check value.
type CheckPayload struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
}

func (a *DirectoryController) CheckUsername(ctx router.Context) error {
	payload := new(CheckPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Failed to parse body")
	}

	if payload.Username == "" {
		return a.badRequest(ctx, "Username is required")
	}

	exists, _, err := a.Repo.Accounts().ExistsByField(ctx.Context(), FieldUsername, payload.Username)
	if err != nil {
		return a.serverError(ctx, "check username", err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"exists":  exists,
	})
}

func (a *DirectoryController) CheckEmail(ctx router.Context) error {
	payload := new(CheckPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Failed to parse body")
	}

	if err := validation.Validate(payload.Email, validation.Required, is.Email); err != nil {
		return a.badRequest(ctx, "A valid email is required")
	}

	exists, _, err := a.Repo.Accounts().ExistsByField(ctx.Context(), FieldEmail, payload.Email)
	if err != nil {
		return a.serverError(ctx, "check email", err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"exists":  exists,
	})
}

// CreateUserPayload reserves a record before auth completes; organization
// fields are filled in later by signup or update calls.
type CreateUserPayload struct {
	Email    string `form:"email" json:"email"`
	Username string `form:"username" json:"username"`
}

func (r CreateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 64)),
	)
}

func (a *DirectoryController) CreateUser(ctx router.Context) error {
	payload := new(CreateUserPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, err.Error())
	}

	account, err := a.Repo.Accounts().Create(ctx.Context(), &Account{
		Email:    payload.Email,
		Username: payload.Username,
	})
	if err != nil {
		return a.writeError(ctx, "create user", err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    account,
	})
}

// SignupPayload persists the full record produced by a signup flow.
type SignupPayload struct {
	Username         string `form:"username" json:"username"`
	Email            string `form:"email" json:"email"`
	OrganizationID   string `form:"organization_id" json:"organization_id"`
	OrganizationName string `form:"organization_name" json:"organization_name"`
	WalletAddress    string `form:"wallet_address" json:"wallet_address"`
	HasPasskey       bool   `form:"has_passkey" json:"has_passkey"`
}

func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OrganizationID, validation.Required),
	)
}

func (a *DirectoryController) Signup(ctx router.Context) error {
	payload := new(SignupPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, err.Error())
	}

	var account *Account
	register := NewRegisterAccountHandler(a.Repo)
	err := register.Execute(ctx.Context(), RegisterAccountMessage{
		Username:         payload.Username,
		Email:            payload.Email,
		OrganizationID:   payload.OrganizationID,
		OrganizationName: payload.OrganizationName,
		WalletAddress:    payload.WalletAddress,
		HasPasskey:       payload.HasPasskey,
		OnResponse:       func(a *Account) { account = a },
	})
	if err != nil {
		return a.writeError(ctx, "signup", err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    account,
	})
}

// LoginPayload resolves a username to its directory record.
type LoginPayload struct {
	Username string `form:"username" json:"username"`
}

func (a *DirectoryController) Login(ctx router.Context) error {
	payload := new(LoginPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Failed to parse body")
	}

	if payload.Username == "" {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Username is required",
			"code":    "USERNAME_REQUIRED",
		})
	}

	account, err := a.Repo.Accounts().GetByUsername(ctx.Context(), payload.Username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ctx.JSON(fiber.StatusNotFound, map[string]any{
				"success": false,
				"message": "Account not found. Please check your username and try again.",
				"code":    textCodeAccountNotFound,
			})
		}
		return a.serverError(ctx, "login", err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    account,
	})
}

// UpdateUsernamePayload claims a username for the record matching the email.
type UpdateUsernamePayload struct {
	Email    string `form:"email" json:"email"`
	Username string `form:"username" json:"username"`
}

func (r UpdateUsernamePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 64)),
	)
}

func (a *DirectoryController) UpdateUsername(ctx router.Context) error {
	payload := new(UpdateUsernamePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Failed to parse body")
	}

	if err := payload.Validate(); err != nil {
		return a.badRequest(ctx, err.Error())
	}

	var account *Account
	claim := NewClaimUsernameHandler(a.Repo)
	err := claim.Execute(ctx.Context(), ClaimUsernameMessage{
		Email:      payload.Email,
		Username:   payload.Username,
		OnResponse: func(a *Account) { account = a },
	})
	if err != nil {
		return a.writeError(ctx, "update username", err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    account,
	})
}

// UpdatePasskeyStatusPayload flips the has-passkey flag once the
// key-management service confirms authenticator creation.
type UpdatePasskeyStatusPayload struct {
	Email      string `form:"email" json:"email"`
	HasPasskey bool   `form:"has_passkey" json:"has_passkey"`
}

func (a *DirectoryController) UpdatePasskeyStatus(ctx router.Context) error {
	payload := new(UpdatePasskeyStatusPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.badRequest(ctx, "Failed to parse body")
	}

	if err := validation.Validate(payload.Email, validation.Required, is.Email); err != nil {
		return a.badRequest(ctx, "A valid email is required")
	}

	account, err := a.Repo.Accounts().MarkPasskeyRegistered(ctx.Context(), payload.Email, payload.HasPasskey)
	if err != nil {
		return a.writeError(ctx, "update passkey status", err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    account,
	})
}

func (a *DirectoryController) GetUserDetails(ctx router.Context) error {
	email := ctx.Query("userEmail")
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return a.badRequest(ctx, "A valid userEmail is required")
	}

	account, err := a.Repo.Accounts().GetByEmail(ctx.Context(), email)
	if err != nil {
		return a.writeError(ctx, "get user details", err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"success": true,
		"user":    account,
	})
}

func (a *DirectoryController) badRequest(ctx router.Context, message string) error {
	return ctx.JSON(fiber.StatusBadRequest, map[string]any{
		"success": false,
		"message": message,
		"code":    textCodeInvalidInput,
	})
}

func (a *DirectoryController) serverError(ctx router.Context, op string, err error) error {
	a.Logger.Error("directory controller error", "op", op, "error", err)
	return ctx.JSON(fiber.StatusInternalServerError, map[string]any{
		"success": false,
		"message": "Internal error",
		"code":    "SERVER_ERROR",
	})
}

// writeError maps repository failures onto the original API's status
// vocabulary: 404 for missing records, 409 for unique violations, 500
// otherwise.
func (a *DirectoryController) writeError(ctx router.Context, op string, err error) error {
	if goerrors.IsNotFound(err) {
		return ctx.JSON(fiber.StatusNotFound, map[string]any{
			"success": false,
			"message": "User not found",
			"code":    textCodeAccountNotFound,
		})
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryConflict {
		return ctx.JSON(fiber.StatusConflict, map[string]any{
			"success": false,
			"message": "Username or email already exists",
			"code":    textCodeDuplicateEntry,
		})
	}

	return a.serverError(ctx, op, err)
}
