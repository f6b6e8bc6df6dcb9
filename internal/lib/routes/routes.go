// Package routes содержит пути страниц портала, на которые ссылаются
// несколько слоёв: маршрутизатор представлений и фасад HTTP-клиента.
package routes

import "github.com/magabrotheeeer/medlink-portal/internal/models"

const (
	Landing          = "/"
	Home             = "/home"
	Login            = "/login"
	Register         = "/register"
	DoctorLogin      = "/doctor-login"
	DoctorRegister   = "/doctor-register"
	Logout           = "/logout"
	Doctors          = "/doctors"
	Booking          = "/book"
	Appointments     = "/appointments"
	Dashboard        = "/dashboard"
	PatientDashboard = "/patient-dashboard"
	DoctorDashboard  = "/doctor-dashboard"
	Profile          = "/profile"
)

var authPages = map[string]bool{
	Login:          true,
	Register:       true,
	DoctorLogin:    true,
	DoctorRegister: true,
}

// IsAuthPage сообщает, является ли путь страницей входа или регистрации
// любой из ролей. На таких страницах 401 от backend не приводит к редиректу.
func IsAuthPage(path string) bool {
	return authPages[path]
}

// LoginFor возвращает страницу входа для роли. Для неизвестной роли: общая страница входа.
func LoginFor(role models.Role) string {
	if role == models.RoleDoctor {
		return DoctorLogin
	}
	return Login
}

// DashboardFor возвращает дашборд роли.
func DashboardFor(role models.Role) string {
	if role == models.RoleDoctor {
		return DoctorDashboard
	}
	return PatientDashboard
}
