package console

import (
	"fmt"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
)

type ConsoleControllerRoutes struct {
	Login     string
	Logout    string
	Register  string
	Dashboard string
	Employees string
}

type ConsoleControllerViews struct {
	Login     string
	Register  string
	Dashboard string
	Employees string
}

// ConsoleController exposes the console's HTTP surface: sign-in, sign-up,
// sign-out, and the employee-management page. Collaborators are injected;
// the controller holds no authentication state of its own.
type ConsoleController struct {
	Debug        bool
	Logger       Logger
	Session      *SessionManager
	Directory    *UserDirectory
	Routes       *ConsoleControllerRoutes
	Views        *ConsoleControllerViews
	ErrorHandler router.ErrorHandler
}

type ConsoleControllerOption func(*ConsoleController) *ConsoleController

func WithControllerSession(session *SessionManager) ConsoleControllerOption {
	return func(c *ConsoleController) *ConsoleController {
		c.Session = session
		return c
	}
}

func WithControllerDirectory(directory *UserDirectory) ConsoleControllerOption {
	return func(c *ConsoleController) *ConsoleController {
		c.Directory = directory
		return c
	}
}

func WithControllerLogger(logger Logger) ConsoleControllerOption {
	return func(c *ConsoleController) *ConsoleController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewConsoleController(opts ...ConsoleControllerOption) *ConsoleController {
	c := &ConsoleController{
		Logger:       defLogger{},
		ErrorHandler: defaultControllerErrHandler,
		Routes: &ConsoleControllerRoutes{
			Login:     "/login",
			Logout:    "/logout",
			Register:  "/register",
			Dashboard: "/",
			Employees: "/employees",
		},
		Views: &ConsoleControllerViews{
			Login:     "login",
			Register:  "register",
			Dashboard: "dashboard",
			Employees: "employees",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Session == nil {
		panic("Missing SessionManager in console controller...")
	}

	if c.Directory == nil {
		panic("Missing UserDirectory in console controller...")
	}

	return c
}

// RegisterConsoleRoutes mounts the controller. Protected pages sit behind
// the guard's middleware; admin mutations additionally behind the role
// policy.
func RegisterConsoleRoutes[T any](app router.Router[T], controller *ConsoleController, guard *RouteGuard) {
	app.Get(controller.Routes.Login, controller.LoginShow).SetName("sign-in.get")
	app.Post(controller.Routes.Login, controller.LoginPost).SetName("sign-in.post")
	app.Get(controller.Routes.Logout, controller.LogOut).SetName("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).SetName("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).SetName("register.post")

	protected := guard.Protected()
	manage := guard.RequireAction(ActionManageEmployees, controller.ErrorHandler)
	remove := guard.RequireAction(ActionDeleteUser, controller.ErrorHandler)
	promote := guard.RequireAction(ActionToggleAdmin, controller.ErrorHandler)

	app.Get(controller.Routes.Dashboard, protected(controller.DashboardShow)).
		SetName("dashboard.get")

	employees := controller.Routes.Employees
	app.Get(employees, protected(manage(controller.EmployeesIndex))).
		SetName("employees.get")
	app.Post(employees, protected(manage(controller.EmployeesCreate))).
		SetName("employees.create")
	app.Post(fmt.Sprintf("%s/:id", employees), protected(manage(controller.EmployeesUpdate))).
		SetName("employees.update")
	app.Post(fmt.Sprintf("%s/:id/delete", employees), protected(remove(controller.EmployeesDelete))).
		SetName("employees.delete")
	app.Post(fmt.Sprintf("%s/:id/admin", employees), protected(promote(controller.EmployeesToggleAdmin))).
		SetName("employees.admin")
}

func (a *ConsoleController) LoginShow(ctx router.Context) error {
	return ctx.Render(a.Views.Login, router.ViewContext{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *ConsoleController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= CONSOLE LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	if _, err := a.Session.Login(ctx.Context(), payload.Email, payload.Password); err != nil {
		return ctx.Render(a.Views.Login, router.ViewContext{
			"record": payload,
			"errors": map[string]string{
				"authentication": UserMessage(err),
			},
		})
	}

	return ctx.Redirect(a.Routes.Dashboard, router.StatusSeeOther)
}

func (a *ConsoleController) LogOut(ctx router.Context) error {
	if err := a.Session.Logout(ctx.Context()); err != nil {
		a.Logger.Error("logout store clear: ", "error", err)
	}
	return ctx.Redirect(a.Routes.Login, router.StatusTemporaryRedirect)
}

func (a *ConsoleController) RegistrationShow(ctx router.Context) error {
	return ctx.Render(a.Views.Register, router.ViewContext{
		"errors": map[string]string{},
		"record": RegistrationPayload{},
	})
}

// RegistrationPayload is the sign-up form payload. The role field is
// accepted but the resulting account is always admin or viewer, decided
// server-side by the admin flag.
type RegistrationPayload struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

// Validate will validate the payload
func (r RegistrationPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *ConsoleController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register parse payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error parsing body",
		}).Status(fiber.StatusBadRequest).Render(a.Views.Register, router.ViewContext{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  err.Error(),
			"system_message": "Error validating payload",
		}).Render(a.Views.Register, router.ViewContext{
			"record":     payload,
			"validation": FormatValidationErrorToMap(err),
		})
	}

	_, err := a.Session.Register(
		ctx.Context(),
		payload.Username,
		payload.Email,
		payload.Password,
		UserRole(payload.Role),
	)
	if err != nil {
		a.Logger.Error("register user: ", "error", err)
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  UserMessage(err),
			"system_message": "Registration failed",
		}).Render(a.Views.Register, router.ViewContext{
			"record": payload,
			"errors": map[string]string{"registration": UserMessage(err)},
		})
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Account created",
	}).Redirect(a.Routes.Dashboard, fiber.StatusSeeOther)
}

func (a *ConsoleController) DashboardShow(ctx router.Context) error {
	identity, _ := IdentityFromRouter(ctx, TemplateUserKey)
	return ctx.Render(a.Views.Dashboard, router.ViewContext{
		"identity": identity,
	})
}

func (a *ConsoleController) EmployeesIndex(ctx router.Context) error {
	entries, err := a.Directory.Refresh(ctx.Context())
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	term, role := employeeFilterParams(ctx.OriginalURL())
	if term != "" || role != "" {
		entries = a.Directory.Filter(term, UserRole(role))
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(entries))
	}

	return ctx.Render(a.Views.Employees, router.ViewContext{
		"employees": entries,
		"search":    term,
		"role":      role,
	})
}

// EmployeeFormPayload is the add/edit employee form.
type EmployeeFormPayload struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r EmployeeFormPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *ConsoleController) EmployeesCreate(ctx router.Context) error {
	payload := new(EmployeeFormPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Directory.Create(ctx.Context(), payload.Name, payload.Email, payload.Password); err != nil {
		return a.flashEmployeesError(ctx, err)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Employee added successfully. They can now log in with their credentials.",
	}).Redirect(a.Routes.Employees, fiber.StatusSeeOther)
}

func (a *ConsoleController) EmployeesUpdate(ctx router.Context) error {
	id := ctx.Param("id", "")

	payload := new(EmployeeFormPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Directory.Update(ctx.Context(), id, payload.Name, payload.Email, payload.Password); err != nil {
		return a.flashEmployeesError(ctx, err)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Employee updated successfully",
	}).Redirect(a.Routes.Employees, fiber.StatusSeeOther)
}

// DeleteConfirmPayload carries the out-of-band confirmation the delete
// contract requires.
type DeleteConfirmPayload struct {
	Confirm bool `form:"confirm" json:"confirm"`
}

func (a *ConsoleController) EmployeesDelete(ctx router.Context) error {
	id := ctx.Param("id", "")

	payload := new(DeleteConfirmPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if !payload.Confirm {
		return flash.WithError(ctx, router.ViewContext{
			"system_message": "Deletion requires confirmation",
		}).Redirect(a.Routes.Employees, fiber.StatusSeeOther)
	}

	if err := a.Directory.Delete(ctx.Context(), id); err != nil {
		return a.flashEmployeesError(ctx, err)
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Employee removed successfully",
	}).Redirect(a.Routes.Employees, fiber.StatusSeeOther)
}

func (a *ConsoleController) EmployeesToggleAdmin(ctx router.Context) error {
	id := ctx.Param("id", "")

	message, err := a.Directory.ToggleAdmin(ctx.Context(), id)
	if err != nil {
		return a.flashEmployeesError(ctx, err)
	}

	if message == "" {
		message = "Admin status updated"
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": message,
	}).Redirect(a.Routes.Employees, fiber.StatusSeeOther)
}

func (a *ConsoleController) flashEmployeesError(ctx router.Context, err error) error {
	return flash.WithError(ctx, router.ViewContext{
		"error_message":  UserMessage(err),
		"system_message": "Operation failed",
	}).Redirect(a.Routes.Employees, fiber.StatusSeeOther)
}

func employeeFilterParams(originalURL string) (term, role string) {
	u, err := url.Parse(originalURL)
	if err != nil {
		return "", ""
	}
	q := u.Query()
	return q.Get("search"), q.Get("role")
}

// FormatValidationErrorToMap flattens ozzo's error map for template rendering.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if errs, ok := err.(validation.Errors); ok {
		for field, fieldErr := range errs {
			if fieldErr != nil {
				out[field] = fieldErr.Error()
			}
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}

func defaultControllerErrHandler(c router.Context, err error) error {
	if IsAuthorizationError(err) {
		return c.Status(fiber.StatusForbidden).Render("errors/403", router.ViewContext{
			"message": UserMessage(err),
		})
	}
	return c.Render("errors/500", router.ViewContext{
		"message": UserMessage(err),
	})
}
